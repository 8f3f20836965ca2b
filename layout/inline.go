package layout

import (
	"sync"

	"github.com/TFMV/forcegraph/physics"
)

// inlineBackend runs the simulation on the caller's goroutine.
type inlineBackend struct {
	mu    sync.Mutex
	token Token
	state *physics.State
	cfg   physics.Config
	sink  Sink
}

func newInlineBackend(sink Sink) *inlineBackend {
	return &inlineBackend{sink: sink}
}

func (b *inlineBackend) Init(token Token, s *physics.State, cfg physics.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
	b.state = s
	b.cfg = cfg
}

func (b *inlineBackend) SyncPositions(frame []float64) {
	token, positions := decodeFrame(frame)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil || token != b.token {
		return
	}
	b.state.SetPositions(positions)
}

func (b *inlineBackend) Update(token Token, steps int, temperature, coolDown float64) {
	b.mu.Lock()
	if b.state == nil || token != b.token {
		b.mu.Unlock()
		return
	}
	simulate(b.state, b.cfg, steps, temperature, coolDown, nil)
	frame := encodeFrame(token, b.state.Positions)
	b.mu.Unlock()

	// The sink re-enters the controller, so it runs without b.mu held.
	b.sink(frame)
}

func (b *inlineBackend) UpdateConfig(token Token, cfg physics.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.token {
		return
	}
	b.cfg = cfg
}

func (b *inlineBackend) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = NoSession
	b.state = nil
}

func (b *inlineBackend) Parallel() bool { return false }
