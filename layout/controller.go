// Package layout drives the force-directed simulation for a consumer-owned
// graph. A Controller flattens the graph into a physics.State, hands it to an
// inline or worker backend and writes the positions of every applied batch
// back into the graph's nodes.
//
// Each Init starts a new session identified by a Token. Frames produced for
// an earlier session are dropped on arrival, so re-initialising never waits
// for work still in flight.
package layout

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

// Options configure a Controller.
type Options struct {
	// OnUpdate is called once per applied batch, after the new positions are
	// written into the graph.
	OnUpdate func()
	// Config holds the initial simulation parameters. The zero value selects
	// physics.DefaultConfig.
	Config  physics.Config
	Factory BackendFactory
	Logger  *log.Logger
	Hooks   Hooks
}

// Controller owns one layout session at a time.
type Controller struct {
	mu       sync.Mutex
	id       string
	onUpdate func()
	factory  BackendFactory
	logger   *log.Logger
	hooks    Hooks
	sessions Sessions

	cfg         physics.Config
	temperature float64
	graph       *models.Graph
	nodes       []*models.Node // index order of the live session
	backend     Backend
	disposed    bool
}

// New creates a controller with no session.
func New(opts Options) *Controller {
	cfg := opts.Config
	if cfg == (physics.Config{}) {
		cfg = physics.DefaultConfig()
	}
	if opts.Factory == nil {
		opts.Factory = DefaultWorkerFactory()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Hooks == nil {
		opts.Hooks = NoopHooks{}
	}
	id := uuid.NewString()[:8]
	return &Controller{
		id:       id,
		onUpdate: opts.OnUpdate,
		factory:  opts.Factory,
		logger:   opts.Logger.With("controller", id),
		hooks:    opts.Hooks,
		cfg:      cfg,
	}
}

// Init starts a new session for g. Every node is assigned its Index in the
// flat arrays. When useParallel is set a worker backend is used if one can
// be constructed; otherwise the session runs inline. Init after Dispose is
// ignored.
func (c *Controller) Init(g *models.Graph, useParallel bool) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		c.logger.Warn("init on disposed controller ignored")
		return
	}

	state := flatten(g)
	token := c.sessions.Next()
	c.graph = g
	c.nodes = append(c.nodes[:0:0], g.Nodes...)
	c.temperature = c.cfg.Temperature

	var fallback error
	c.backend, fallback = c.selectBackend(useParallel)
	c.backend.Init(token, state, c.cfg)
	parallel := c.backend.Parallel()
	c.mu.Unlock()

	if fallback != nil {
		c.logger.Debug("falling back to inline backend", "err", fallback)
		c.hooks.OnFallback(fallback)
	}
	c.hooks.OnSessionStart(token, state.NodeCount(), state.EdgeCount(), parallel)
}

// selectBackend returns the backend for a new session, reusing the current
// one when it is of the requested kind. Must be called with c.mu held.
func (c *Controller) selectBackend(useParallel bool) (Backend, error) {
	var fallback error
	if useParallel {
		if c.backend != nil && c.backend.Parallel() {
			return c.backend, nil
		}
		b, err := c.factory.NewWorker(c.applyFrame, c.logger)
		if err == nil {
			c.replaceBackend(b)
			return b, nil
		}
		fallback = err
	}
	if c.backend != nil && !c.backend.Parallel() {
		return c.backend, fallback
	}
	b := newInlineBackend(c.applyFrame)
	c.replaceBackend(b)
	return b, fallback
}

func (c *Controller) replaceBackend(b Backend) {
	if c.backend != nil && c.backend != b {
		c.backend.Dispose()
	}
	c.backend = b
}

// Step requests steps more iterations. Positions currently in the graph are
// sent first, so nodes moved by the consumer are honoured. With the inline
// backend OnUpdate has run by the time Step returns; with a worker Step
// returns immediately.
func (c *Controller) Step(steps int) {
	if steps <= 0 {
		return
	}

	c.mu.Lock()
	token := c.sessions.Current()
	if c.backend == nil || token == NoSession || len(c.nodes) == 0 {
		c.mu.Unlock()
		return
	}
	frame := c.positionFrame(token)
	temperature, coolDown := c.temperature, c.cfg.CoolDown
	c.temperature *= math.Pow(coolDown, float64(steps))
	b := c.backend
	c.mu.Unlock()

	b.SyncPositions(frame)
	b.Update(token, steps, temperature, coolDown)
}

// positionFrame snapshots the graph positions in index order. Must be
// called with c.mu held.
func (c *Controller) positionFrame(token Token) []float64 {
	positions := make([]float64, 2*len(c.nodes))
	for i, n := range c.nodes {
		positions[2*i] = n.X
		positions[2*i+1] = n.Y
	}
	return encodeFrame(token, positions)
}

// applyFrame is the sink for every backend. Frames from any session other
// than the live one are dropped without touching the graph.
func (c *Controller) applyFrame(frame []float64) {
	token, positions := decodeFrame(frame)

	c.mu.Lock()
	live := c.sessions.Current()
	if token == NoSession || token != live || len(positions) != 2*len(c.nodes) {
		c.mu.Unlock()
		c.hooks.OnStaleFrame(token, live)
		return
	}
	for i, n := range c.nodes {
		n.X = positions[2*i]
		n.Y = positions[2*i+1]
	}
	onUpdate := c.onUpdate
	c.mu.Unlock()

	c.hooks.OnBatchApplied(token)
	if onUpdate != nil {
		onUpdate()
	}
}

// SetConfig replaces the controller's simulation parameters. Temperature
// takes effect at the next Init and CoolDown at the next Step; call
// UpdateConfig to push the rest to the live backend.
func (c *Controller) SetConfig(cfg physics.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Config returns the controller's simulation parameters.
func (c *Controller) Config() physics.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// UpdateConfig pushes the current parameters to the live backend. It is a
// no-op without a session.
func (c *Controller) UpdateConfig() {
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.sessions.Current()
	if c.backend == nil || token == NoSession {
		return
	}
	c.backend.UpdateConfig(token, c.cfg)
}

// Dispose stops the backend and ends the session. Frames still in flight
// are dropped on arrival. Dispose is idempotent and the controller cannot
// be re-initialised afterwards.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.sessions.Clear()
	if c.backend != nil {
		c.backend.Dispose()
		c.backend = nil
	}
	c.graph = nil
	c.nodes = nil
	c.logger.Debug("controller disposed")
}

// WithGraph runs fn with the session graph while no batch can be applied.
// fn receives nil when there is no session.
func (c *Controller) WithGraph(fn func(g *models.Graph)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.graph)
}

// Temperature returns the controller's tracked temperature.
func (c *Controller) Temperature() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.temperature
}

// Token returns the live session token, or NoSession.
func (c *Controller) Token() Token {
	return c.sessions.Current()
}

// NodeCount returns the number of nodes in the live session.
func (c *Controller) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Parallel reports whether the live session runs on a worker.
func (c *Controller) Parallel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend != nil && c.backend.Parallel()
}

// flatten assigns node indices and builds the simulation state for g. Edges
// whose endpoints are not resolved are skipped.
func flatten(g *models.Graph) *physics.State {
	s := physics.NewState(len(g.Nodes), 0)
	for i, n := range g.Nodes {
		n.Index = i
		s.Positions[2*i] = n.X
		s.Positions[2*i+1] = n.Y
		if n.Mass > 0 {
			s.Mass[i] = n.Mass
		}
		s.Radius[i] = n.Radius
		s.Fixed[i] = n.Fixed
	}
	for _, e := range g.Edges {
		if e.From == nil || e.To == nil {
			continue
		}
		s.Edges = append(s.Edges, int32(e.From.Index), int32(e.To.Index))
		s.Weights = append(s.Weights, e.Weight)
	}
	return s
}
