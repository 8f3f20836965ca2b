package layout

import "time"

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler runs a callback at the next frame boundary.
type Scheduler interface {
	// Schedule arranges for fn to run once and returns a function that
	// cancels it if it has not run yet.
	Schedule(fn func()) (cancel func())
}

// TickerScheduler fires callbacks after a fixed interval.
type TickerScheduler struct {
	Interval time.Duration
}

func (s TickerScheduler) Schedule(fn func()) func() {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	t := time.AfterFunc(interval, fn)
	return func() { t.Stop() }
}

// ImmediateScheduler runs callbacks as soon as possible on a new goroutine.
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(fn func()) func() {
	go fn()
	return func() {}
}
