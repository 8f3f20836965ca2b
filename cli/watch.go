package cli

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/layout"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/render"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorDim   = lipgloss.Color("240")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleCanvas  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// Rows and columns taken by the header, footer and canvas border.
const (
	chromeRows = 4
	chromeCols = 2
)

func newWatchCmd() *cobra.Command {
	var (
		input    string
		surreal  bool
		parallel bool
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Animate a layout in the terminal",
		Long: `Animate the layout of a graph file as ASCII art, redrawn every frame.

Keys: r restarts, p toggles the background worker, +/- adjust gravity, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if cmd.Flags().Changed("parallel") {
				cfg.Worker.Parallel = parallel
			}
			m := newWatchModel(cmd.Context(), args[0], input, surreal, cfg, loggerFromContext(cmd.Context()))
			defer m.close()

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				if ctxErr := cmd.Context().Err(); ctxErr != nil {
					return ctxErr
				}
				return err
			}
			return m.err
		},
	}

	f := cmd.Flags()
	f.StringVar(&input, "input", "", "input format: json, csv or log (default: from extension)")
	f.BoolVar(&surreal, "surreal", false, "color nodes with the surreal palette")
	f.BoolVar(&parallel, "parallel", true, "run the simulation on a background worker")
	return cmd
}

type tickMsg time.Time

// runDoneMsg reports the end of an animation run. gen identifies the run so
// results of a run replaced by a restart are ignored.
type runDoneMsg struct {
	gen   int
	steps int
	err   error
}

// watchModel drives one controller through successive animation runs. A
// restart cancels the running animator and waits for it before the
// controller is re-initialised.
type watchModel struct {
	ctx     context.Context
	path    string
	input   string
	surreal bool
	cfg     config.Config
	logger  *log.Logger

	ctrl     *layout.Controller
	anim     atomic.Pointer[layout.Animator]
	parallel bool

	gen     int
	cancel  context.CancelFunc
	runDone chan struct{}
	running bool
	steps   int

	cols, rows int
	canvas     string
	err        error
}

func newWatchModel(ctx context.Context, path, input string, surreal bool, cfg config.Config, logger *log.Logger) *watchModel {
	m := &watchModel{
		ctx:      ctx,
		path:     path,
		input:    input,
		surreal:  surreal,
		cfg:      cfg,
		logger:   logger,
		parallel: cfg.Worker.Parallel,
		cols:     cfg.Render.Columns,
		rows:     cfg.Render.Rows,
	}
	// Log lines would tear the alternate screen; only warnings get through.
	quiet := logger.WithPrefix("watch")
	quiet.SetLevel(log.WarnLevel)
	m.ctrl = layout.New(layout.Options{
		Config:  cfg.Simulation,
		Factory: cfg.Worker.WorkerFactory(),
		Logger:  quiet,
		OnUpdate: func() {
			if a := m.anim.Load(); a != nil {
				a.Notify()
			}
		},
	})
	return m
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.start(), m.tick())
}

func (m *watchModel) tick() tea.Cmd {
	interval := m.cfg.Animation.FrameInterval
	if interval <= 0 {
		interval = layout.DefaultFrameInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// start stops any running animation, reloads the graph and begins a new
// session. The returned command blocks until the run ends.
func (m *watchModel) start() tea.Cmd {
	m.stop()

	g, err := loadGraph(m.path, m.input, m.surreal, m.cfg)
	if err != nil {
		m.err = err
		return tea.Quit
	}

	ctx, cancel := context.WithCancel(m.ctx)
	done := make(chan struct{})
	m.gen++
	m.cancel, m.runDone = cancel, done
	anim := layout.NewAnimator(m.ctrl, m.cfg.Animation.Scheduler(), m.cfg.Animation.AnimatorOptions())
	m.anim.Store(anim)
	m.ctrl.Init(g, m.parallel)
	m.running, m.steps = true, 0
	m.redraw()

	gen := m.gen
	return func() tea.Msg {
		defer close(done)
		steps, err := anim.Run(ctx)
		return runDoneMsg{gen: gen, steps: steps, err: err}
	}
}

// stop cancels the running animation and waits for it to return.
func (m *watchModel) stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.runDone
	m.cancel, m.runDone = nil, nil
	m.running = false
}

func (m *watchModel) close() {
	m.stop()
	m.ctrl.Dispose()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.stop()
			return m, tea.Quit
		case "r":
			return m, m.start()
		case "p":
			m.parallel = !m.parallel
			return m, m.start()
		case "+", "=":
			m.scaleGravity(1.5)
		case "-":
			m.scaleGravity(1 / 1.5)
		}
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width-chromeCols, 10)
		m.rows = max(msg.Height-chromeRows, 5)
		m.redraw()
	case tickMsg:
		m.redraw()
		return m, m.tick()
	case runDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.running = false
		m.steps = msg.steps
		if msg.err != nil && m.ctx.Err() == nil {
			m.err = msg.err
		}
		m.redraw()
	}
	return m, nil
}

// scaleGravity changes gravity on the live session.
func (m *watchModel) scaleGravity(factor float64) {
	cfg := m.ctrl.Config()
	cfg.Gravity *= factor
	m.ctrl.SetConfig(cfg)
	m.ctrl.UpdateConfig()
}

// redraw renders the session graph while no batch can be applied to it.
func (m *watchModel) redraw() {
	opts := render.NewDefaultOptions("ascii")
	opts.Columns, opts.Rows = m.cols, m.rows
	opts.ShowLabels = m.cfg.Render.Labels

	m.ctrl.WithGraph(func(g *models.Graph) {
		if g == nil {
			return
		}
		out, err := render.Render(g, opts)
		if err != nil {
			m.err = err
			return
		}
		m.canvas = strings.TrimRight(string(out), "\n")
	})
}

func (m *watchModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("forcegraph"))
	b.WriteString(styleDim.Render("  " + m.path))
	b.WriteString("\n")
	b.WriteString(styleCanvas.Render(m.canvas))
	b.WriteString("\n")

	status := styleSuccess.Render("settled")
	if m.running {
		status = styleValue.Render("running")
	}
	if m.err != nil {
		status = styleError.Render(m.err.Error())
	}
	backend := "inline"
	if m.ctrl.Parallel() {
		backend = "worker"
	}
	b.WriteString(fmt.Sprintf("%s  %s %s  %s %s  %s %s  %s %s\n",
		status,
		styleDim.Render("backend"), styleValue.Render(backend),
		styleDim.Render("temp"), styleValue.Render(fmt.Sprintf("%.5f", m.ctrl.Temperature())),
		styleDim.Render("gravity"), styleValue.Render(fmt.Sprintf("%.3g", m.ctrl.Config().Gravity)),
		styleDim.Render("steps"), styleValue.Render(fmt.Sprint(m.steps)),
	))
	b.WriteString(styleDim.Render("r restart  p toggle worker  +/- gravity  q quit"))
	return b.String()
}
