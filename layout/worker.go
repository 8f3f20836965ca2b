package layout

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/TFMV/forcegraph/physics"
)

type msgKind int

const (
	msgInit msgKind = iota
	msgPositions
	msgUpdate
	msgConfig
)

func (k msgKind) String() string {
	switch k {
	case msgInit:
		return "init"
	case msgPositions:
		return "positions"
	case msgUpdate:
		return "update"
	case msgConfig:
		return "config"
	default:
		return "unknown"
	}
}

// message is the only thing that crosses into a worker. Every buffer it
// carries is owned by the worker once enqueued.
type message struct {
	kind  msgKind
	token Token

	state *physics.State // msgInit
	cfg   physics.Config // msgInit, msgConfig
	frame []float64      // msgPositions

	steps       int // msgUpdate
	temperature float64
	coolDown    float64
}

// workerBackend runs the simulation on a dedicated goroutine. The controller
// talks to it only through the inbox; results come back as copied frames on
// the outbox and are handed to the sink by a second goroutine.
type workerBackend struct {
	inbox  *mailbox[message]
	outbox chan []float64
	sink   Sink
	logger *log.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	release func()
	once    sync.Once
	done    chan struct{}

	// Owned by the run goroutine.
	token Token
	state *physics.State
	cfg   physics.Config
}

func startWorker(sink Sink, logger *log.Logger, release func()) *workerBackend {
	ctx, cancel := context.WithCancel(context.Background())
	w := &workerBackend{
		inbox:   newMailbox[message](),
		outbox:  make(chan []float64, 1),
		sink:    sink,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		release: release,
		done:    make(chan struct{}),
	}
	go w.run()
	go w.deliver()
	return w
}

func (w *workerBackend) run() {
	defer func() {
		if w.release != nil {
			w.release()
		}
		close(w.outbox)
	}()
	for {
		msg, ok := w.inbox.Next(w.ctx)
		if !ok {
			return
		}
		w.handle(msg)
	}
}

func (w *workerBackend) deliver() {
	defer close(w.done)
	for frame := range w.outbox {
		w.sink(frame)
	}
}

func (w *workerBackend) handle(msg message) {
	if msg.kind == msgInit {
		w.token = msg.token
		w.state = msg.state
		w.cfg = msg.cfg
		return
	}
	if msg.token != w.token || w.state == nil {
		w.logger.Debug("worker dropping message", "kind", msg.kind, "token", msg.token, "live", w.token)
		return
	}

	switch msg.kind {
	case msgPositions:
		_, positions := decodeFrame(msg.frame)
		w.state.SetPositions(positions)
	case msgConfig:
		w.cfg = msg.cfg
	case msgUpdate:
		simulate(w.state, w.cfg, msg.steps, msg.temperature, msg.coolDown, func() bool {
			return w.ctx.Err() != nil
		})
		if w.ctx.Err() != nil {
			return
		}
		select {
		case w.outbox <- encodeFrame(w.token, w.state.Positions):
		case <-w.ctx.Done():
		}
	}
}

func (w *workerBackend) post(msg message) {
	if !w.inbox.Enqueue(msg) {
		w.logger.Debug("worker disposed, message discarded", "kind", msg.kind, "token", msg.token)
	}
}

func (w *workerBackend) Init(token Token, s *physics.State, cfg physics.Config) {
	w.post(message{kind: msgInit, token: token, state: s, cfg: cfg})
}

func (w *workerBackend) SyncPositions(frame []float64) {
	token, _ := decodeFrame(frame)
	w.post(message{kind: msgPositions, token: token, frame: frame})
}

func (w *workerBackend) Update(token Token, steps int, temperature, coolDown float64) {
	w.post(message{kind: msgUpdate, token: token, steps: steps, temperature: temperature, coolDown: coolDown})
}

func (w *workerBackend) UpdateConfig(token Token, cfg physics.Config) {
	w.post(message{kind: msgConfig, token: token, cfg: cfg})
}

// Dispose stops the worker without waiting for it. Frames already on the
// outbox are still delivered to the sink.
func (w *workerBackend) Dispose() {
	w.once.Do(func() {
		w.cancel()
		w.inbox.Close()
	})
}

// Done is closed once both worker goroutines have exited.
func (w *workerBackend) Done() <-chan struct{} { return w.done }

func (w *workerBackend) Parallel() bool { return true }
