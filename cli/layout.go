package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/TFMV/forcegraph/config"
	"github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/ingest"
	"github.com/TFMV/forcegraph/layout"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/render"
)

type layoutOpts struct {
	input    string
	surreal  bool
	output   string
	formats  []string
	steps    int
	parallel bool
	labels   bool
}

func newLayoutCmd() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout <file>",
		Short: "Lay out a graph file and render the result",
		Long: `Lay out a graph read from a JSON, CSV or log file and write one output file per format.

The input format is detected from the file extension unless --input is given.
Outputs are named <out>.<ext>, e.g. graph.svg and graph.png.`,
		Example: `  forcegraph layout deps.json
  forcegraph layout edges.csv -o build/edges --formats svg,png,dot
  forcegraph layout deps.json --steps 1000 --parallel=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context())
			if err := opts.apply(cmd, &cfg); err != nil {
				return err
			}
			return runLayout(cmd.Context(), args[0], opts, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.input, "input", "", "input format: json, csv or log (default: from extension)")
	f.BoolVar(&opts.surreal, "surreal", false, "color nodes with the surreal palette")
	f.StringVarP(&opts.output, "out", "o", "", "output path without extension (default: render.output)")
	f.StringSliceVar(&opts.formats, "formats", nil, "output formats: svg, png, ascii, json, dot (default: render.formats)")
	f.IntVar(&opts.steps, "steps", 0, "maximum simulation steps (default: animation.max_steps)")
	f.BoolVar(&opts.parallel, "parallel", true, "run the simulation on a background worker")
	f.BoolVar(&opts.labels, "labels", true, "draw node labels")

	return cmd
}

// apply overrides cfg with the flags the user set explicitly.
func (o layoutOpts) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("out") {
		cfg.Render.Output = o.output
	}
	if f.Changed("formats") {
		cfg.Render.Formats = o.formats
	}
	if f.Changed("steps") {
		if o.steps < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "--steps must be at least 1, got %d", o.steps)
		}
		cfg.Animation.MaxSteps = o.steps
	}
	if f.Changed("parallel") {
		cfg.Worker.Parallel = o.parallel
	}
	if f.Changed("labels") {
		cfg.Render.Labels = o.labels
	}
	if len(cfg.Render.Formats) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no output formats given")
	}
	return nil
}

func runLayout(ctx context.Context, path string, opts layoutOpts, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	g, err := loadGraph(path, opts.input, opts.surreal, cfg)
	if err != nil {
		return err
	}
	logger.Debug("loaded graph", "path", path, "nodes", len(g.Nodes), "edges", len(g.Edges))

	prog := newProgress(logger)
	res, err := layout.Run(ctx, g, layout.RunOptions{
		Config:    cfg.Simulation,
		Parallel:  cfg.Worker.Parallel,
		Factory:   cfg.Worker.WorkerFactory(),
		Scheduler: layout.ImmediateScheduler{},
		Animation: cfg.Animation.AnimatorOptions(),
		Logger:    logger,
		Hooks:     layout.LogHooks{Logger: logger},
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Laid out %d nodes in %d steps", len(g.Nodes), res.Steps))

	out, err := render.RenderFormats(ctx, g, renderOptions(cfg, g, ""), cfg.Render.Formats)
	if err != nil {
		return err
	}
	written, err := writeOutputs(cfg.Render.Output, out)
	if err != nil {
		return err
	}
	for _, p := range written {
		logger.Info("wrote output", "path", p)
	}
	return nil
}

// loadGraph reads path, detecting the format from the extension when format
// is empty.
func loadGraph(path, format string, surreal bool, cfg config.Config) (*models.Graph, error) {
	if format == "" {
		format = ingest.DetectFormat(path)
	}
	if surreal {
		format = "surreal-" + format
	}
	sim := cfg.Simulation
	return ingest.LoadFile(path, format, ingest.Options{Width: sim.Width, Height: sim.Height, Seed: sim.Seed})
}

// renderOptions combines the render section with the graph's own canvas and
// background.
func renderOptions(cfg config.Config, g *models.Graph, format string) *render.OutputOptions {
	opts := render.NewDefaultOptions(format)
	rc := cfg.Render
	opts.Padding = rc.Padding
	opts.ShowLabels = rc.Labels
	opts.Columns, opts.Rows = rc.Columns, rc.Rows
	opts.Background = rc.Background
	if g.Background != "" {
		opts.Background = g.Background
	}
	if g.Width > 0 && g.Height > 0 {
		opts.Width, opts.Height = g.Width, g.Height
	}
	return opts
}

// writeOutputs writes each rendering to base plus the renderer's extension
// and returns the written paths in format order.
func writeOutputs(base string, out map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", dir)
		}
	}

	formats := make([]string, 0, len(out))
	for f := range out {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		r, err := render.GetRenderer(format)
		if err != nil {
			return paths, err
		}
		p := base + "." + r.Extension()
		if err := os.WriteFile(p, out[format], 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInternal, err, "write %s", p)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
