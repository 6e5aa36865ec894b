// Package queue buffers counselor alerts between the assessment path and the
// delivery workers. Enqueue never blocks: a full queue rejects the alert so a
// slow notification channel cannot stall check-ins.
package queue

import (
	"context"
	"sync"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/notify"
	"github.com/JayantA-10/AI-Stress-System/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Alert is the payload type flowing through the queue.
type Alert = notify.Alert

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an alert. It returns ErrFull or ErrClosed instead of blocking.
	Enqueue(ctx context.Context, a Alert) error

	// Dequeue returns the channel workers read from. It is closed by Close.
	Dequeue(ctx context.Context) <-chan Alert

	// Len returns the current number of queued alerts.
	Len(ctx context.Context) int

	// Close stops accepting alerts; queued alerts remain readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	alerts   chan Alert
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.alerts = make(chan Alert, q.capacity)
	metrics.UpdateAlertQueueSize(0)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, a Alert) error { //nolint:gocritic // hugeParam: Alert is passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordAlertQueueDrop("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordAlertQueueDrop("context_cancelled")
		return err
	}

	select {
	case q.alerts <- a:
		metrics.UpdateAlertQueueSize(len(q.alerts))
		return nil
	default:
		metrics.RecordAlertQueueDrop("queue_full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Alert {
	return q.alerts
}

// Len implements Queue.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.alerts)
	metrics.UpdateAlertQueueSize(size)
	return size
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close implements Queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.alerts)
	q.closed = true
	return nil
}

// IsClosed implements Queue.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
