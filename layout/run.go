package layout

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

// RunOptions configure a one-shot layout.
type RunOptions struct {
	Config    physics.Config
	Parallel  bool
	Factory   BackendFactory
	Scheduler Scheduler
	Animation AnimatorOptions
	Logger    *log.Logger
	Hooks     Hooks
	// OnUpdate, if set, runs after each applied batch. The next batch is
	// not requested until it returns, so it may read g freely.
	OnUpdate func(g *models.Graph)
}

// Result summarizes a finished run.
type Result struct {
	Steps       int
	Temperature float64
	Parallel    bool
	Elapsed     time.Duration
}

// Run lays out g until the animation bounds are reached or ctx is done. The
// graph holds the final positions when Run returns, even on cancellation.
func Run(ctx context.Context, g *models.Graph, opts RunOptions) (Result, error) {
	start := time.Now()
	if opts.Scheduler == nil {
		opts.Scheduler = ImmediateScheduler{}
	}

	var anim *Animator
	ctrl := New(Options{
		Config:  opts.Config,
		Factory: opts.Factory,
		Logger:  opts.Logger,
		Hooks:   opts.Hooks,
		OnUpdate: func() {
			if opts.OnUpdate != nil {
				opts.OnUpdate(g)
			}
			anim.Notify()
		},
	})
	defer ctrl.Dispose()
	anim = NewAnimator(ctrl, opts.Scheduler, opts.Animation)

	ctrl.Init(g, opts.Parallel)
	steps, err := anim.Run(ctx)
	res := Result{
		Steps:       steps,
		Temperature: ctrl.Temperature(),
		Parallel:    ctrl.Parallel(),
	}
	// Dispose first so no late frame can touch g after Run returns.
	ctrl.Dispose()
	res.Elapsed = time.Since(start)
	return res, err
}
