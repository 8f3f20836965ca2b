package layout

import (
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/TFMV/forcegraph/errors"
)

// BackendFactory constructs parallel backends. A failed construction makes
// the controller fall back to the inline backend.
type BackendFactory interface {
	NewWorker(sink Sink, logger *log.Logger) (Backend, error)
}

// WorkerFactory builds goroutine-backed workers, at most MaxWorkers of them
// alive at a time. MaxWorkers of zero disables workers entirely.
type WorkerFactory struct {
	MaxWorkers int64

	once sync.Once
	sem  *semaphore.Weighted
}

// NewWorkerFactory returns a factory bounded to limit concurrent workers.
func NewWorkerFactory(limit int64) *WorkerFactory {
	return &WorkerFactory{MaxWorkers: limit}
}

// DefaultWorkerFactory bounds workers to GOMAXPROCS.
func DefaultWorkerFactory() *WorkerFactory {
	return NewWorkerFactory(int64(runtime.GOMAXPROCS(0)))
}

// NewWorker starts a worker, or fails with an UNAVAILABLE error when
// workers are disabled or the bound is reached.
func (f *WorkerFactory) NewWorker(sink Sink, logger *log.Logger) (Backend, error) {
	if f.MaxWorkers <= 0 {
		return nil, errors.New(errors.ErrCodeUnavailable, "background workers are disabled")
	}
	f.once.Do(func() {
		f.sem = semaphore.NewWeighted(f.MaxWorkers)
	})
	if !f.sem.TryAcquire(1) {
		return nil, errors.New(errors.ErrCodeUnavailable, "worker limit of %d reached", f.MaxWorkers)
	}
	return startWorker(sink, logger, func() { f.sem.Release(1) }), nil
}
