// Package config loads forcegraph settings from TOML.
//
// A file only needs the keys it changes; everything else keeps the value
// from Default:
//
//	[simulation]
//	gravity = 0.2
//	use_barnes_hut = true
//
//	[worker]
//	parallel = true
//
//	[animation]
//	max_steps = 500
//	frame_interval = "16ms"
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/layout"
	"github.com/TFMV/forcegraph/physics"
)

// Config is the full set of settings.
type Config struct {
	Simulation physics.Config  `toml:"simulation"`
	Worker     WorkerConfig    `toml:"worker"`
	Animation  AnimationConfig `toml:"animation"`
	Render     RenderConfig    `toml:"render"`
	Server     ServerConfig    `toml:"server"`
}

// WorkerConfig selects the execution backend.
type WorkerConfig struct {
	Parallel   bool  `toml:"parallel"`
	MaxWorkers int64 `toml:"max_workers"` // 0 disables background workers
}

// AnimationConfig bounds a layout run.
type AnimationConfig struct {
	StepsPerFrame  int           `toml:"steps_per_frame"`
	MaxSteps       int           `toml:"max_steps"`
	MinTemperature float64       `toml:"min_temperature"`
	FrameInterval  time.Duration `toml:"frame_interval"`
}

// RenderConfig controls output.
type RenderConfig struct {
	Formats    []string `toml:"formats"`
	Output     string   `toml:"output"` // path without extension
	Padding    float64  `toml:"padding"`
	Background string   `toml:"background"`
	Labels     bool     `toml:"labels"`
	Columns    int      `toml:"columns"` // ascii grid size
	Rows       int      `toml:"rows"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	MaxNodes     int           `toml:"max_nodes"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Simulation: physics.DefaultConfig(),
		Worker: WorkerConfig{
			Parallel:   true,
			MaxWorkers: 4,
		},
		Animation: AnimationConfig{
			StepsPerFrame:  10,
			MaxSteps:       300,
			MinTemperature: 1e-4,
			FrameInterval:  layout.DefaultFrameInterval,
		},
		Render: RenderConfig{
			Formats:    []string{"svg"},
			Output:     "graph",
			Padding:    20,
			Background: "#ffffff",
			Labels:     true,
			Columns:    80,
			Rows:       24,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 10 << 20,
			MaxNodes:     5000,
		},
	}
}

// Load reads path over Default. An empty path returns the defaults. Unknown
// keys are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	return Parse(string(data), cfg)
}

// Parse decodes TOML text over base.
func Parse(text string, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	switch {
	case c.Worker.MaxWorkers < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "worker.max_workers must be non-negative, got %d", c.Worker.MaxWorkers)
	case c.Animation.StepsPerFrame < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "animation.steps_per_frame must be at least 1, got %d", c.Animation.StepsPerFrame)
	case c.Animation.MaxSteps < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "animation.max_steps must be non-negative, got %d", c.Animation.MaxSteps)
	case c.Animation.MaxSteps == 0 && c.Animation.MinTemperature <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "animation needs max_steps or a positive min_temperature to terminate")
	case c.Animation.FrameInterval < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "animation.frame_interval must be non-negative, got %v", c.Animation.FrameInterval)
	case c.Render.Padding < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "render.padding must be non-negative, got %v", c.Render.Padding)
	case c.Render.Columns < 1 || c.Render.Rows < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "render.columns and render.rows must be positive")
	case c.Server.MaxBodyBytes <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	case c.Server.MaxNodes < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_nodes must be non-negative, got %d", c.Server.MaxNodes)
	}
	return nil
}

// AnimatorOptions converts the animation section.
func (a AnimationConfig) AnimatorOptions() layout.AnimatorOptions {
	return layout.AnimatorOptions{
		StepsPerFrame:  a.StepsPerFrame,
		MaxSteps:       a.MaxSteps,
		MinTemperature: a.MinTemperature,
	}
}

// Scheduler returns the frame scheduler for the animation section.
func (a AnimationConfig) Scheduler() layout.Scheduler {
	if a.FrameInterval == 0 {
		return layout.ImmediateScheduler{}
	}
	return layout.TickerScheduler{Interval: a.FrameInterval}
}

// WorkerFactory returns a factory bounded by the worker section.
func (w WorkerConfig) WorkerFactory() *layout.WorkerFactory {
	return layout.NewWorkerFactory(w.MaxWorkers)
}
