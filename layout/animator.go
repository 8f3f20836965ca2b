package layout

import (
	"context"
)

// AnimatorOptions bound an animation run.
type AnimatorOptions struct {
	StepsPerFrame  int     // iterations requested per frame, at least 1
	MaxSteps       int     // stop after this many iterations; 0 means no limit
	MinTemperature float64 // stop once the temperature falls below this
}

// Animator requests one batch per frame from a Controller and waits for it
// to be applied before scheduling the next. The controller's OnUpdate must
// call Notify.
type Animator struct {
	ctrl    *Controller
	sched   Scheduler
	opts    AnimatorOptions
	applied chan struct{}
}

// NewAnimator creates an animator for ctrl.
func NewAnimator(ctrl *Controller, sched Scheduler, opts AnimatorOptions) *Animator {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if sched == nil {
		sched = TickerScheduler{}
	}
	return &Animator{
		ctrl:    ctrl,
		sched:   sched,
		opts:    opts,
		applied: make(chan struct{}, 1),
	}
}

// Notify signals that a batch has been applied.
func (a *Animator) Notify() {
	select {
	case a.applied <- struct{}{}:
	default:
	}
}

// Run animates the live session until MaxSteps iterations have been applied,
// the temperature drops below MinTemperature, or ctx is done. It returns
// the number of iterations applied.
func (a *Animator) Run(ctx context.Context) (int, error) {
	select {
	case <-a.applied:
	default:
	}

	done := 0
	if a.ctrl.NodeCount() == 0 {
		return done, nil
	}

	frame := make(chan struct{}, 1)
	for !a.finished(done) {
		cancel := a.sched.Schedule(func() {
			select {
			case frame <- struct{}{}:
			default:
			}
		})
		select {
		case <-ctx.Done():
			cancel()
			return done, ctx.Err()
		case <-frame:
		}

		n := a.opts.StepsPerFrame
		if a.opts.MaxSteps > 0 && done+n > a.opts.MaxSteps {
			n = a.opts.MaxSteps - done
		}
		a.ctrl.Step(n)

		select {
		case <-ctx.Done():
			return done, ctx.Err()
		case <-a.applied:
		}
		done += n
	}
	return done, nil
}

func (a *Animator) finished(done int) bool {
	if a.opts.MaxSteps > 0 && done >= a.opts.MaxSteps {
		return true
	}
	return a.ctrl.Temperature() < a.opts.MinTemperature
}
