package layout

import "github.com/charmbracelet/log"

// Hooks observes controller events. Methods are called outside the
// controller's lock, possibly from a worker's delivery goroutine.
type Hooks interface {
	OnSessionStart(token Token, nodes, edges int, parallel bool)
	OnBatchApplied(token Token)
	OnStaleFrame(token, live Token)
	OnFallback(err error)
}

// NoopHooks ignores every event.
type NoopHooks struct{}

func (NoopHooks) OnSessionStart(Token, int, int, bool) {}
func (NoopHooks) OnBatchApplied(Token)                 {}
func (NoopHooks) OnStaleFrame(Token, Token)            {}
func (NoopHooks) OnFallback(error)                     {}

// LogHooks reports events to a logger. Applied batches are logged at debug
// level since they arrive once per frame.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnSessionStart(token Token, nodes, edges int, parallel bool) {
	h.Logger.Info("layout session started", "token", token, "nodes", nodes, "edges", edges, "parallel", parallel)
}

func (h LogHooks) OnBatchApplied(token Token) {
	h.Logger.Debug("batch applied", "token", token)
}

func (h LogHooks) OnStaleFrame(token, live Token) {
	h.Logger.Debug("stale frame dropped", "token", token, "live", live)
}

func (h LogHooks) OnFallback(err error) {
	h.Logger.Warn("parallel layout unavailable, running inline", "err", err)
}
