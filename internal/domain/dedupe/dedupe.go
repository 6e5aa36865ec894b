// Package dedupe tracks check-in submission IDs so a retried submission does
// not append a second assessment.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// Default deduper configuration constants.
const (
	defaultMaxSize = 50_000
	defaultTTL     = 24 * time.Hour
)

// Deduper records seen submission IDs.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) (bool, error)

	// Unrecord forgets id so the submission can be retried. Callers use it
	// when a recorded submission failed before its record was stored.
	Unrecord(ctx context.Context, id string) error
}

type entry struct {
	id       string
	recorded time.Time
}

// InMemoryDeduper keeps IDs in a bounded FIFO with a TTL. When full, the
// oldest ID is evicted.
type InMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int        // 0 or negative = unbounded
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) *InMemoryDeduper {
	d := &InMemoryDeduper{
		maxSize: defaultMaxSize,
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

// SeenAndRecord implements Deduper.
func (d *InMemoryDeduper) SeenAndRecord(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.expire(now)

	if _, ok := d.seen[id]; ok {
		return true, nil
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.remove(d.order.Front())
	}
	d.seen[id] = d.order.PushBack(&entry{id: id, recorded: now})
	return false, nil
}

// Unrecord implements Deduper.
func (d *InMemoryDeduper) Unrecord(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.seen[id]; ok {
		d.remove(el)
	}
	return nil
}

// Size returns the number of IDs currently tracked.
func (d *InMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}

// expire drops IDs older than the TTL. Entries are in insertion order, so it
// stops at the first live one. Must be called with d.mu held.
func (d *InMemoryDeduper) expire(now time.Time) {
	if d.ttl <= 0 {
		return
	}
	for el := d.order.Front(); el != nil; el = d.order.Front() {
		if now.Sub(el.Value.(*entry).recorded) < d.ttl {
			return
		}
		d.remove(el)
	}
}

func (d *InMemoryDeduper) remove(el *list.Element) {
	if el == nil {
		return
	}
	delete(d.seen, el.Value.(*entry).id)
	d.order.Remove(el)
}
