package layout

import (
	"context"
	"sync"
)

// mailbox is an unbounded FIFO queue. Enqueue never blocks, which keeps the
// controller's calls non-blocking while a worker is busy simulating.
type mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	ready  chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{ready: make(chan struct{}, 1)}
}

// Enqueue appends v. It returns false once the mailbox is closed.
func (m *mailbox[T]) Enqueue(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the oldest item without waiting.
func (m *mailbox[T]) TryDequeue() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if len(m.items) == 0 {
		return zero, false
	}
	v := m.items[0]
	m.items[0] = zero
	m.items = m.items[1:]
	return v, true
}

// Next waits for the oldest item. It returns false when ctx is done or the
// mailbox is closed and drained.
func (m *mailbox[T]) Next(ctx context.Context) (T, bool) {
	for {
		if v, ok := m.TryDequeue(); ok {
			return v, true
		}

		m.mu.Lock()
		closed := m.closed
		m.mu.Unlock()
		if closed {
			var zero T
			return zero, false
		}

		select {
		case <-m.ready:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// Close rejects further items and wakes a waiting Next.
func (m *mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Len returns the number of queued items.
func (m *mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
