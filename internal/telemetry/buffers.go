// Package telemetry holds the process-wide bounded buffers of raw device
// events, one per telemetry category. The alerts category doubles as the
// push-side input to alert reconciliation; the other categories feed charts.
package telemetry

import "sync"

// DefaultCapacity is the per-category buffer cap.
const DefaultCapacity = 100

// Well-known categories emitted by the device.
const (
	CategoryAlerts   = "alerts"
	CategoryJobState = "job-state"
)

// Buffers is a set of capped, most-recent-first buffers keyed by category.
// Push evicts the oldest entry once a category exceeds capacity. Buffers is
// safe for concurrent use; readers get defensive copies.
type Buffers[T any] struct {
	mu       sync.RWMutex
	capacity int
	byCat    map[string][]T
}

// NewBuffers creates a buffer set with the given per-category capacity.
// A non-positive capacity falls back to the default.
func NewBuffers[T any](capacity int) *Buffers[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffers[T]{
		capacity: capacity,
		byCat:    make(map[string][]T),
	}
}

// Push prepends a record to the category's buffer, evicting the oldest entry
// when the buffer is full.
func (b *Buffers[T]) Push(category string, record T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf := b.byCat[category]
	if len(buf) >= b.capacity {
		buf = buf[:b.capacity-1]
	}
	next := make([]T, 0, len(buf)+1)
	next = append(next, record)
	next = append(next, buf...)
	b.byCat[category] = next
}

// List returns a copy of the category's buffer, most recent first.
func (b *Buffers[T]) List(category string) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	buf := b.byCat[category]
	out := make([]T, len(buf))
	copy(out, buf)
	return out
}

// Len returns the number of buffered records for a category.
func (b *Buffers[T]) Len(category string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byCat[category])
}

// Categories returns the categories that currently hold records.
func (b *Buffers[T]) Categories() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cats := make([]string, 0, len(b.byCat))
	for cat := range b.byCat {
		cats = append(cats, cat)
	}
	return cats
}
