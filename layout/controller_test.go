package layout

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	fgerrors "github.com/TFMV/forcegraph/errors"
	"github.com/TFMV/forcegraph/models"
	"github.com/TFMV/forcegraph/physics"
)

func testConfig() physics.Config {
	return physics.Config{
		Scaling:     1,
		Temperature: 0.1,
		CoolDown:    0.99,
		Seed:        7,
	}
}

// pairGraph is two nodes at (0,0) and (10,0) joined by one edge of weight 1.
func pairGraph(t *testing.T) *models.Graph {
	t.Helper()
	g := models.NewGraph("pair")
	a := models.NewNode("default", "a", nil)
	b := models.NewNode("default", "b", nil)
	b.SetPosition(10, 0)
	g.AddNode(a)
	g.AddNode(b)
	if err := g.AddEdge(models.NewEdge(a.ID, b.ID, "default", 1, nil)); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	return g
}

// ringGraph is n nodes on a slightly irregular circle, each joined to its
// neighbour, plus one chord.
func ringGraph(t *testing.T, n int) *models.Graph {
	t.Helper()
	g := models.NewGraph("ring")
	for i := 0; i < n; i++ {
		node := models.NewNode("default", "", nil)
		angle := 2 * math.Pi * float64(i) / float64(n)
		r := 50 + float64(i%3)
		node.SetPosition(r*math.Cos(angle), r*math.Sin(angle))
		g.AddNode(node)
	}
	for i := 0; i < n; i++ {
		a, b := g.Nodes[i], g.Nodes[(i+1)%n]
		if err := g.AddEdge(models.NewEdge(a.ID, b.ID, "default", 1, nil)); err != nil {
			t.Fatalf("AddEdge() error = %v", err)
		}
	}
	if err := g.AddEdge(models.NewEdge(g.Nodes[0].ID, g.Nodes[n/2].ID, "default", 2, nil)); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	return g
}

func nodeDistance(a, b *models.Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// updates counts OnUpdate calls and signals each one.
type updates struct {
	n  atomic.Int64
	ch chan struct{}
}

func newUpdates() *updates {
	return &updates{ch: make(chan struct{}, 64)}
}

func (u *updates) callback() {
	u.n.Add(1)
	select {
	case u.ch <- struct{}{}:
	default:
	}
}

func (u *updates) wait(t *testing.T) {
	t.Helper()
	select {
	case <-u.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for OnUpdate")
	}
}

// fakeBackend records what the controller sends and never produces frames on
// its own; tests deliver frames through sink.
type fakeBackend struct {
	mu       sync.Mutex
	sink     Sink
	inits    []Token
	updates  []Token
	disposed int
}

func (b *fakeBackend) Init(token Token, _ *physics.State, _ physics.Config) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inits = append(b.inits, token)
}

func (b *fakeBackend) SyncPositions([]float64) {}

func (b *fakeBackend) Update(token Token, _ int, _, _ float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, token)
}

func (b *fakeBackend) UpdateConfig(Token, physics.Config) {}

func (b *fakeBackend) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disposed++
}

func (b *fakeBackend) Parallel() bool { return true }

type fakeFactory struct {
	backend *fakeBackend
	err     error
	calls   int
}

func (f *fakeFactory) NewWorker(sink Sink, _ *log.Logger) (Backend, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.backend.sink = sink
	return f.backend, nil
}

// recordingHooks keeps every event for inspection.
type recordingHooks struct {
	mu        sync.Mutex
	applied   []Token
	stale     []Token
	fallbacks []error
	sessions  []Token
}

func (h *recordingHooks) OnSessionStart(token Token, _, _ int, _ bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions = append(h.sessions, token)
}

func (h *recordingHooks) OnBatchApplied(token Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.applied = append(h.applied, token)
}

func (h *recordingHooks) OnStaleFrame(token, _ Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stale = append(h.stale, token)
}

func (h *recordingHooks) OnFallback(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fallbacks = append(h.fallbacks, err)
}

func TestControllerTokensIncrease(t *testing.T) {
	c := New(Options{Config: testConfig()})
	defer c.Dispose()

	if c.Token() != NoSession {
		t.Fatalf("Token() before Init = %v, want NoSession", c.Token())
	}
	g := pairGraph(t)
	prev := NoSession
	for i := 0; i < 10; i++ {
		c.Init(g, false)
		if tok := c.Token(); tok <= prev {
			t.Fatalf("Token() after Init #%d = %v, want > %v", i, tok, prev)
		}
		prev = c.Token()
	}
}

func TestControllerAssignsIndices(t *testing.T) {
	c := New(Options{Config: testConfig()})
	defer c.Dispose()

	g := ringGraph(t, 7)
	c.Init(g, false)

	seen := make(map[int]bool)
	for _, n := range g.Nodes {
		if n.Index < 0 || n.Index >= len(g.Nodes) || seen[n.Index] {
			t.Fatalf("index %d is not part of a permutation of 0..%d", n.Index, len(g.Nodes)-1)
		}
		seen[n.Index] = true
	}
	if c.NodeCount() != 7 {
		t.Errorf("NodeCount() = %d, want 7", c.NodeCount())
	}
}

func TestControllerTwoNodeConvergence(t *testing.T) {
	u := newUpdates()
	c := New(Options{Config: testConfig(), OnUpdate: u.callback})
	defer c.Dispose()

	g := pairGraph(t)
	c.Init(g, false)

	var delta float64
	for i := 0; i < 200; i++ {
		prev := nodeDistance(g.Nodes[0], g.Nodes[1])
		c.Step(1)
		delta = math.Abs(nodeDistance(g.Nodes[0], g.Nodes[1]) - prev)
	}

	if got := u.n.Load(); got != 200 {
		t.Errorf("OnUpdate calls = %d, want 200", got)
	}
	if delta >= 1e-3 {
		t.Errorf("distance still moving after 200 steps: delta = %v", delta)
	}
	if d := nodeDistance(g.Nodes[0], g.Nodes[1]); math.Abs(d-1) > 1e-3 {
		t.Errorf("equilibrium distance = %v, want 1", d)
	}
}

func TestControllerTemperatureDecay(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "inline"
		if parallel {
			name = "worker"
		}
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			c := New(Options{Config: cfg})
			defer c.Dispose()

			c.Init(pairGraph(t), parallel)
			if got := c.Temperature(); got != cfg.Temperature {
				t.Fatalf("Temperature() after Init = %v, want %v", got, cfg.Temperature)
			}

			for i := 0; i < 10; i++ {
				c.Step(1)
			}
			c.Step(15)

			want := cfg.Temperature * math.Pow(cfg.CoolDown, 25)
			if got := c.Temperature(); math.Abs(got-want) > 1e-9*want {
				t.Errorf("Temperature() = %v, want %v", got, want)
			}

			c.Init(pairGraph(t), parallel)
			if got := c.Temperature(); got != cfg.Temperature {
				t.Errorf("Temperature() after re-Init = %v, want %v", got, cfg.Temperature)
			}
		})
	}
}

func TestControllerBackendEquivalence(t *testing.T) {
	const steps = 50

	gInline := ringGraph(t, 12)
	inline := New(Options{Config: physics.DefaultConfig()})
	defer inline.Dispose()
	inline.Init(gInline, false)
	inline.Step(steps)

	u := newUpdates()
	gWorker := ringGraph(t, 12)
	worker := New(Options{Config: physics.DefaultConfig(), OnUpdate: u.callback})
	defer worker.Dispose()
	worker.Init(gWorker, true)
	if !worker.Parallel() {
		t.Fatal("Parallel() = false, want a worker backend")
	}
	worker.Step(steps)
	u.wait(t)

	worker.WithGraph(func(g *models.Graph) {
		for i := range g.Nodes {
			a, b := gInline.Nodes[i], g.Nodes[i]
			if math.Abs(a.X-b.X) > 1e-6 || math.Abs(a.Y-b.Y) > 1e-6 {
				t.Errorf("node %d: inline (%v, %v), worker (%v, %v)", i, a.X, a.Y, b.X, b.Y)
			}
		}
	})
}

func TestControllerStaleFrameRejected(t *testing.T) {
	u := newUpdates()
	hooks := &recordingHooks{}
	c := New(Options{Config: testConfig(), OnUpdate: u.callback, Hooks: hooks})
	defer c.Dispose()

	g := pairGraph(t)
	c.Init(g, false)
	c.Init(g, false)
	live := c.Token()

	c.applyFrame(encodeFrame(live-1, []float64{100, 100, 200, 200}))
	if u.n.Load() != 0 {
		t.Error("OnUpdate called for a stale frame")
	}
	if g.Nodes[0].X != 0 || g.Nodes[1].X != 10 {
		t.Errorf("stale frame moved nodes to %v, %v", g.Nodes[0].X, g.Nodes[1].X)
	}
	if len(hooks.stale) != 1 || hooks.stale[0] != live-1 {
		t.Errorf("stale hooks = %v, want [%v]", hooks.stale, live-1)
	}

	c.applyFrame(encodeFrame(live, []float64{1, 2, 3, 4}))
	if u.n.Load() != 1 {
		t.Errorf("OnUpdate calls = %d, want 1", u.n.Load())
	}
	if g.Nodes[1].X != 3 || g.Nodes[1].Y != 4 {
		t.Errorf("node 1 = (%v, %v), want (3, 4)", g.Nodes[1].X, g.Nodes[1].Y)
	}

	c.applyFrame(encodeFrame(live, []float64{1, 2}))
	if u.n.Load() != 1 {
		t.Error("OnUpdate called for a frame of the wrong length")
	}
}

func TestControllerRapidReinit(t *testing.T) {
	u := newUpdates()
	hooks := &recordingHooks{}
	fb := &fakeBackend{}
	ff := &fakeFactory{backend: fb}
	c := New(Options{Config: testConfig(), OnUpdate: u.callback, Factory: ff, Hooks: hooks})
	defer c.Dispose()

	g := pairGraph(t)
	c.Init(g, true)
	first := c.Token()
	c.Step(5)
	c.Init(g, true)
	second := c.Token()
	c.Step(5)

	if ff.calls != 1 {
		t.Errorf("factory calls = %d, want 1 (worker reused)", ff.calls)
	}
	if len(fb.updates) != 2 || fb.updates[0] != first || fb.updates[1] != second {
		t.Errorf("updates = %v, want [%v %v]", fb.updates, first, second)
	}

	// The first session's result arrives after the second Init.
	fb.sink(encodeFrame(first, []float64{100, 100, 200, 200}))
	if u.n.Load() != 0 {
		t.Fatal("result of the abandoned session was applied")
	}
	if g.Nodes[0].X != 0 || g.Nodes[1].X != 10 {
		t.Errorf("abandoned session moved nodes to %v, %v", g.Nodes[0].X, g.Nodes[1].X)
	}

	fb.sink(encodeFrame(second, []float64{1, 2, 3, 4}))
	if u.n.Load() != 1 {
		t.Errorf("OnUpdate calls = %d, want 1", u.n.Load())
	}
	if len(hooks.applied) != 1 || hooks.applied[0] != second {
		t.Errorf("applied = %v, want [%v]", hooks.applied, second)
	}
}

func TestControllerFallback(t *testing.T) {
	tests := []struct {
		name    string
		factory BackendFactory
	}{
		{"factory error", &fakeFactory{err: errors.New("no workers here")}},
		{"workers disabled", NewWorkerFactory(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUpdates()
			hooks := &recordingHooks{}
			c := New(Options{Config: testConfig(), OnUpdate: u.callback, Factory: tt.factory, Hooks: hooks})
			defer c.Dispose()

			c.Init(pairGraph(t), true)
			if c.Parallel() {
				t.Fatal("Parallel() = true after failed construction")
			}
			if len(hooks.fallbacks) != 1 {
				t.Errorf("fallbacks = %d, want 1", len(hooks.fallbacks))
			}

			c.Step(1)
			if got := u.n.Load(); got != 1 {
				t.Errorf("OnUpdate calls after inline Step = %d, want 1", got)
			}
		})
	}
}

func TestWorkerFactoryLimit(t *testing.T) {
	f := NewWorkerFactory(1)
	sink := func([]float64) {}

	first, err := f.NewWorker(sink, log.Default())
	if err != nil {
		t.Fatalf("NewWorker() error = %v", err)
	}
	if _, err := f.NewWorker(sink, log.Default()); !fgerrors.Is(err, fgerrors.ErrCodeUnavailable) {
		t.Fatalf("NewWorker() over limit error = %v, want %s", err, fgerrors.ErrCodeUnavailable)
	}

	first.Dispose()
	select {
	case <-first.(*workerBackend).Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit after Dispose")
	}

	again, err := f.NewWorker(sink, log.Default())
	if err != nil {
		t.Fatalf("NewWorker() after release error = %v", err)
	}
	again.Dispose()
}

func TestControllerDisposeIdempotent(t *testing.T) {
	c := New(Options{Config: testConfig()})
	g := pairGraph(t)
	c.Init(g, true)
	c.Step(10)

	w, ok := c.backend.(*workerBackend)
	if !ok {
		t.Fatalf("backend = %T, want *workerBackend", c.backend)
	}

	c.Dispose()
	c.Dispose()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker goroutines still running after Dispose")
	}
	if c.Token() != NoSession {
		t.Errorf("Token() after Dispose = %v, want NoSession", c.Token())
	}

	// Everything after Dispose is inert.
	c.Step(1)
	c.UpdateConfig()
	c.Init(g, false)
	if c.Token() != NoSession {
		t.Errorf("Init after Dispose started session %v", c.Token())
	}
}

func TestControllerDisposeDropsInflight(t *testing.T) {
	u := newUpdates()
	fb := &fakeBackend{}
	c := New(Options{Config: testConfig(), OnUpdate: u.callback, Factory: &fakeFactory{backend: fb}})

	g := pairGraph(t)
	c.Init(g, true)
	tok := c.Token()
	c.Step(3)
	c.Dispose()

	fb.sink(encodeFrame(tok, []float64{1, 2, 3, 4}))
	if u.n.Load() != 0 {
		t.Error("frame applied after Dispose")
	}
	if fb.disposed != 1 {
		t.Errorf("backend disposed %d times, want 1", fb.disposed)
	}
}

func TestControllerSwitchesBackend(t *testing.T) {
	fb := &fakeBackend{}
	c := New(Options{Config: testConfig(), Factory: &fakeFactory{backend: fb}})
	defer c.Dispose()

	g := pairGraph(t)
	c.Init(g, true)
	c.Init(g, false)

	if c.Parallel() {
		t.Error("Parallel() = true after inline Init")
	}
	if fb.disposed != 1 {
		t.Errorf("worker disposed %d times, want 1", fb.disposed)
	}
}

func TestControllerEmptyGraph(t *testing.T) {
	u := newUpdates()
	c := New(Options{Config: testConfig(), OnUpdate: u.callback})
	defer c.Dispose()

	c.Init(models.NewGraph("empty"), false)
	c.Step(10)
	if u.n.Load() != 0 {
		t.Error("OnUpdate called for an empty graph")
	}
	if got := c.Temperature(); got != testConfig().Temperature {
		t.Errorf("Temperature() = %v, want %v", got, testConfig().Temperature)
	}
}

func TestControllerHonoursMovedFixedNode(t *testing.T) {
	c := New(Options{Config: testConfig()})
	defer c.Dispose()

	g := pairGraph(t)
	g.Nodes[0].Fixed = true
	c.Init(g, false)
	c.Step(5)

	// Drag the pinned node; the next batch starts from the new position.
	c.WithGraph(func(g *models.Graph) {
		g.Nodes[0].SetPosition(-40, 7)
	})
	c.Step(5)

	if g.Nodes[0].X != -40 || g.Nodes[0].Y != 7 {
		t.Errorf("fixed node at (%v, %v), want (-40, 7)", g.Nodes[0].X, g.Nodes[0].Y)
	}
}

func TestControllerUpdateConfig(t *testing.T) {
	c := New(Options{Config: testConfig()})
	defer c.Dispose()

	// Legal before Init.
	c.UpdateConfig()

	c.Init(pairGraph(t), false)
	cfg := c.Config()
	cfg.Gravity = 2.5
	c.SetConfig(cfg)
	c.UpdateConfig()
	c.UpdateConfig()

	b := c.backend.(*inlineBackend)
	if b.cfg.Gravity != 2.5 {
		t.Errorf("backend gravity = %v, want 2.5", b.cfg.Gravity)
	}
}

func TestNewDefaultsConfig(t *testing.T) {
	c := New(Options{})
	defer c.Dispose()
	if got, want := c.Config(), physics.DefaultConfig(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}
}
