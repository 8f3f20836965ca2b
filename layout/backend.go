package layout

import (
	"github.com/TFMV/forcegraph/physics"
)

// Sink receives result frames from a backend. The inline backend calls it
// synchronously from Update; a worker calls it from its own delivery
// goroutine, one frame at a time and in request order.
type Sink func(frame []float64)

// Backend executes the physics for one controller. Every method that names
// a token is ignored by the backend unless the token matches the one given
// to the most recent Init.
type Backend interface {
	// Init replaces the backend's session. The backend takes ownership of s.
	Init(token Token, s *physics.State, cfg physics.Config)
	// SyncPositions overwrites positions from a frame, token in slot 0.
	SyncPositions(frame []float64)
	// Update runs steps iterations starting at temperature and delivers the
	// resulting frame to the sink.
	Update(token Token, steps int, temperature, coolDown float64)
	// UpdateConfig replaces the simulation parameters.
	UpdateConfig(token Token, cfg physics.Config)
	// Dispose releases the backend. It is idempotent.
	Dispose()
	// Parallel reports whether the backend runs off the caller's goroutine.
	Parallel() bool
}

// simulate runs the shared per-update loop for both backends.
func simulate(s *physics.State, cfg physics.Config, steps int, temperature, coolDown float64, stop func() bool) {
	cfg.CoolDown = coolDown
	for i := 0; i < steps; i++ {
		if stop != nil && stop() {
			return
		}
		temperature = physics.Step(s, cfg, temperature)
	}
}
