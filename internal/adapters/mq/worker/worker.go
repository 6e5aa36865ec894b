// Package worker delivers queued counselor alerts through a Notifier.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/JayantA-10/AI-Stress-System/internal/adapters/notify"
	"github.com/JayantA-10/AI-Stress-System/pkg/logger"
	"github.com/JayantA-10/AI-Stress-System/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount     = 2
	defaultMaxAttempts     = 3
	defaultBackoff         = 200 * time.Millisecond
	defaultDeliveryTimeout = 5 * time.Second
	poolShutdownTimeout    = 30 * time.Second
)

// Alert is what workers read off the queue.
type Alert = notify.Alert

// Queue defines how workers receive alerts.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Alert
}

// Worker consumes alerts and hands them to a Notifier.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	notifier notify.Notifier
	name     string

	maxAttempts     int
	backoff         time.Duration
	deliveryTimeout time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, n notify.Notifier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:           q,
		notifier:        n,
		name:            "alert-worker",
		maxAttempts:     defaultMaxAttempts,
		backoff:         defaultBackoff,
		deliveryTimeout: defaultDeliveryTimeout,
		shutdown:        make(chan struct{}),
		done:            make(chan struct{}),
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	alerts := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case a, ok := <-alerts:
			if !ok {
				return
			}
			if err := w.deliver(ctx, a); err != nil {
				w.logger.Error(ctx, "alert delivery failed",
					logger.String("record_id", a.RecordID),
					logger.String("subject_id", a.SubjectID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// deliver tries the notifier up to maxAttempts times.
func (w *InMemoryWorker) deliver(ctx context.Context, a Alert) error { //nolint:gocritic // hugeParam: Alert is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordAlertDeliveryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, w.deliveryTimeout)
		err = w.notifier.Notify(attemptCtx, a)
		cancel()
		if err == nil {
			metrics.RecordNotification("sent")
			return nil
		}

		w.logger.Warn(ctx, "alert delivery attempt failed",
			logger.String("record_id", a.RecordID),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
		if attempt == w.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			metrics.RecordNotification("failed")
			return fmt.Errorf("deliver %s: %w", a.RecordID, ctx.Err())
		case <-w.shutdown:
			metrics.RecordNotification("failed")
			return fmt.Errorf("deliver %s: %w", a.RecordID, err)
		case <-time.After(w.backoff):
		}
	}

	metrics.RecordNotification("failed")
	return fmt.Errorf("deliver %s after %d attempts: %w", a.RecordID, w.maxAttempts, err)
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	started bool
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers; counts below 1 use the default.
func NewPool(workerCount int, q Queue, n notify.Notifier, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append(append([]Option(nil), opts...), WithName("alert-worker-"+strconv.Itoa(i)))
		pool.workers[i] = NewInMemoryWorker(q, n, workerOpts...)
	}
	pool.logger = pool.workers[0].logger

	metrics.UpdateAlertWorkers(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	p.started = true
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets workers drain it. Workers still running
// when ctx (or the pool timeout) expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	if !p.started {
		metrics.UpdateAlertWorkers(0)
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
		}
	}

	metrics.UpdateAlertWorkers(0)
	if timedOut {
		return fmt.Errorf("alert pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
