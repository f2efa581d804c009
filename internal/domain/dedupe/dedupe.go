package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int64
}

// Ordered implements Deduper and remembers first-appearance order.
type Ordered struct {
	mu       sync.RWMutex
	seen     map[string]int // id -> first-appearance position
	order    []string
	capacity int
}

// NewOrdered creates an empty deduper.
func NewOrdered(opts ...Option) *Ordered {
	d := &Ordered{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int, d.capacity)
	d.order = make([]string, 0, d.capacity)
	return d
}

// FromSlice records every id in ids in order.
func FromSlice(ctx context.Context, ids []string) *Ordered {
	d := NewOrdered(WithCapacity(len(ids)))
	for _, id := range ids {
		d.SeenAndRecord(ctx, id)
	}
	return d
}

// SeenAndRecord reports whether id was seen before and records it if not.
func (d *Ordered) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = len(d.order)
	d.order = append(d.order, id)
	return false
}

// Position returns where id first appeared.
func (d *Ordered) Position(id string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	pos, ok := d.seen[id]
	return pos, ok
}

// Keys returns the distinct ids in first-appearance order.
func (d *Ordered) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.order...)
}

// Size returns the number of distinct ids recorded.
func (d *Ordered) Size() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return int64(len(d.order))
}
