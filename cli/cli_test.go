package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/errors"
)

const sampleGraph = `{
	"nodes": [
		{"id": "a", "label": "alpha"},
		{"id": "b", "label": "beta"},
		{"id": "c", "label": "gamma"},
		{"id": "d", "label": "delta"}
	],
	"edges": [
		{"source": "a", "target": "b"},
		{"source": "b", "target": "c"},
		{"source": "c", "target": "d", "weight": 2},
		{"source": "d", "target": "a"}
	]
}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.json")
	if err := os.WriteFile(path, []byte(sampleGraph), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the command tree with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(io.Discard)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2025-01-01")
	defer SetVersion("", "", "")

	if version != "1.0.0" || commit != "abc123" || date != "2025-01-01" {
		t.Errorf("SetVersion() = (%q, %q, %q)", version, commit, date)
	}
}

func TestLoggerFromContext(t *testing.T) {
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("loggerFromContext() without a logger should return the default logger")
	}

	l := newLogger(io.Discard, log.DebugLevel)
	if got := loggerFromContext(withLogger(context.Background(), l)); got != l {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}

func TestConfigFromContext(t *testing.T) {
	if got := configFromContext(context.Background()); got.Animation.MaxSteps != config.Default().Animation.MaxSteps {
		t.Errorf("configFromContext() without a config = %+v, want defaults", got.Animation)
	}

	cfg := config.Default()
	cfg.Animation.MaxSteps = 7
	if got := configFromContext(withConfig(context.Background(), cfg)); got.Animation.MaxSteps != 7 {
		t.Errorf("configFromContext().Animation.MaxSteps = %d, want 7", got.Animation.MaxSteps)
	}
}

func TestConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forcegraph.toml")
	if err := os.WriteFile(path, []byte("[simulation]\ngravity = 0.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", path, "config")
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	for _, want := range []string{"[simulation]", "gravity = 0.25", "[worker]", "[server]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigFlagErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[simulation]\ngravty = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing file", filepath.Join(dir, "nope.toml"), errors.ErrCodeFileNotFound},
		{"unknown key", bad, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "--config", tt.path, "config")
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLayoutCommand(t *testing.T) {
	for _, parallel := range []string{"true", "false"} {
		t.Run("parallel="+parallel, func(t *testing.T) {
			input := writeSample(t)
			base := filepath.Join(t.TempDir(), "out", "sample")

			_, err := execute(t, "layout", input, "-o", base, "--formats", "svg,json,ascii,dot", "--steps", "20", "--parallel="+parallel)
			if err != nil {
				t.Fatalf("layout error = %v", err)
			}
			for _, ext := range []string{"svg", "json", "txt", "dot"} {
				data, err := os.ReadFile(base + "." + ext)
				if err != nil {
					t.Errorf("missing %s output: %v", ext, err)
					continue
				}
				if len(data) == 0 {
					t.Errorf("%s output is empty", ext)
				}
			}
		})
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	input := writeSample(t)
	out := filepath.Join(t.TempDir(), "out")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing input", []string{"layout", filepath.Join(t.TempDir(), "none.json"), "-o", out}, errors.ErrCodeFileNotFound},
		{"bad steps", []string{"layout", input, "-o", out, "--steps", "0"}, errors.ErrCodeInvalidInput},
		{"bad format", []string{"layout", input, "-o", out, "--formats", "gif"}, errors.ErrCodeInvalidFormat},
		{"bad input format", []string{"layout", input, "-o", out, "--input", "xml"}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func watchConfig() config.Config {
	cfg := config.Default()
	cfg.Animation.FrameInterval = 0
	cfg.Animation.StepsPerFrame = 5
	cfg.Animation.MaxSteps = 20
	cfg.Render.Columns, cfg.Render.Rows = 30, 10
	return cfg
}

func TestWatchModel(t *testing.T) {
	cfg := watchConfig()
	cfg.Worker.Parallel = false
	m := newWatchModel(context.Background(), writeSample(t), "", false, cfg, newLogger(io.Discard, log.InfoLevel))
	defer m.close()

	run := m.start()
	if !m.running || m.canvas == "" {
		t.Fatal("start() did not begin a session with an initial drawing")
	}
	m.Update(run())
	if m.running || m.steps != 20 {
		t.Errorf("after run: running = %v, steps = %d, want false and 20", m.running, m.steps)
	}
	if m.ctrl.Parallel() {
		t.Error("Parallel() = true, want inline backend")
	}

	// Toggling the worker restarts the layout on the other backend.
	_, run = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m.Update(run())
	if !m.ctrl.Parallel() {
		t.Error("Parallel() = false after toggle, want worker backend")
	}
	if m.steps != 20 || m.gen != 2 {
		t.Errorf("after restart: steps = %d, gen = %d, want 20 and 2", m.steps, m.gen)
	}

	view := m.View()
	for _, want := range []string{"settled", "worker", "steps"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestWatchModelStaleRun(t *testing.T) {
	m := newWatchModel(context.Background(), writeSample(t), "", false, watchConfig(), newLogger(io.Discard, log.InfoLevel))
	defer m.close()

	run := m.start()
	msg := run()
	m.Update(runDoneMsg{gen: m.gen - 1, steps: 3})
	if !m.running {
		t.Error("a result from a replaced run ended the current one")
	}
	m.Update(msg)
	if m.running {
		t.Error("the current run's result was ignored")
	}
}

func TestWatchModelGravity(t *testing.T) {
	m := newWatchModel(context.Background(), writeSample(t), "", false, watchConfig(), newLogger(io.Discard, log.InfoLevel))
	defer m.close()

	before := m.ctrl.Config().Gravity
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	if got := m.ctrl.Config().Gravity; got != before*1.5 {
		t.Errorf("Gravity = %v, want %v", got, before*1.5)
	}
}

func TestWatchModelMissingFile(t *testing.T) {
	m := newWatchModel(context.Background(), filepath.Join(t.TempDir(), "none.json"), "", false, watchConfig(), newLogger(io.Discard, log.InfoLevel))
	defer m.close()

	m.start()
	if !errors.Is(m.err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want %s", m.err, errors.ErrCodeFileNotFound)
	}
}
