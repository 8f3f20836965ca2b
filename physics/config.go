package physics

import (
	"math"

	"github.com/TFMV/forcegraph/errors"
)

// Config holds the simulation parameters. It is plain data: the controller
// keeps one copy and pushes it to whichever backend runs the simulation.
type Config struct {
	Width  float64    `toml:"width" json:"width"`
	Height float64    `toml:"height" json:"height"`
	Center [2]float64 `toml:"center" json:"center"`

	Gravity       float64 `toml:"gravity" json:"gravity"`
	StrongGravity bool    `toml:"strong_gravity" json:"strong_gravity"`
	Scaling       float64 `toml:"scaling" json:"scaling"`

	// Temperature is the initial temperature of a session. CoolDown is the
	// per-step decay factor applied to it.
	Temperature float64 `toml:"temperature" json:"temperature"`
	CoolDown    float64 `toml:"cool_down" json:"cool_down"`

	// Barnes-Hut is used only when UseBarnesHut is set and the node count
	// exceeds BarnesHutThreshold.
	UseBarnesHut       bool    `toml:"use_barnes_hut" json:"use_barnes_hut"`
	BarnesHutTheta     float64 `toml:"barnes_hut_theta" json:"barnes_hut_theta"`
	BarnesHutThreshold int     `toml:"barnes_hut_threshold" json:"barnes_hut_threshold"`

	PreventOverlap  bool    `toml:"prevent_overlap" json:"prevent_overlap"`
	MaxDisplacement float64 `toml:"max_displacement" json:"max_displacement"` // 0 disables the clamp
	Seed            int64   `toml:"seed" json:"seed"`
}

// DefaultConfig returns the parameters used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		Width:              800,
		Height:             600,
		Center:             [2]float64{400, 300},
		Gravity:            0.1,
		Scaling:            1.0,
		Temperature:        0.1,
		CoolDown:           0.99,
		BarnesHutTheta:     0.8,
		BarnesHutThreshold: 200,
		MaxDisplacement:    50,
		Seed:               1,
	}
}

// Validate checks the ranges the simulation relies on.
func (c Config) Validate() error {
	switch {
	case c.Width < 0 || c.Height < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "width and height must be non-negative, got %vx%v", c.Width, c.Height)
	case !(c.CoolDown > 0 && c.CoolDown <= 1):
		return errors.New(errors.ErrCodeInvalidConfig, "cool_down must be in (0,1], got %v", c.CoolDown)
	case c.Temperature < 0 || math.IsNaN(c.Temperature):
		return errors.New(errors.ErrCodeInvalidConfig, "temperature must be non-negative, got %v", c.Temperature)
	case c.Gravity < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "gravity must be non-negative, got %v", c.Gravity)
	case c.Scaling < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "scaling must be non-negative, got %v", c.Scaling)
	case c.UseBarnesHut && c.BarnesHutTheta <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "barnes_hut_theta must be positive, got %v", c.BarnesHutTheta)
	case c.BarnesHutThreshold < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "barnes_hut_threshold must be non-negative, got %d", c.BarnesHutThreshold)
	case c.MaxDisplacement < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "max_displacement must be non-negative, got %v", c.MaxDisplacement)
	}
	return nil
}

// idealDistance is the length unit of the simulation: the side of the square
// each node would get if the canvas were shared evenly. Without a canvas the
// unit is 1.
func (c Config) idealDistance(n int) float64 {
	if c.Width <= 0 || c.Height <= 0 || n == 0 {
		return 1
	}
	return math.Sqrt(c.Width * c.Height / float64(n))
}
