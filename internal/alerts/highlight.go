package alerts

import (
	"sort"
	"sync"
	"time"
)

// DefaultHighlightDwell is how long a "recently changed" mark stays set
// before it expires on its own.
const DefaultHighlightDwell = 3 * time.Second

// ComputeDeltas returns the identity keys whose freshness advanced between
// two reconciliation passes. A key counts as changed when it exists in both
// sets and either its published count increased or its last-seen time moved
// forward. Keys that only appear in the current set are arrivals, not
// changes, and are left to the caller.
func ComputeDeltas(previous, current CanonicalSet) map[string]struct{} {
	changed := make(map[string]struct{})
	for key, i := range current.Index {
		prev, ok := previous.Get(key)
		if !ok {
			continue
		}
		cur := current.Records[i]
		if cur.PublishedCount > prev.PublishedCount || cur.LastSeenAt > prev.LastSeenAt {
			changed[key] = struct{}{}
		}
	}
	return changed
}

// HighlightTracker holds the set of identity keys currently flagged as
// recently changed. Each key expires independently after the dwell time;
// re-marking a key before it expires restarts its window instead of stacking
// a second one. Expiry runs on timer goroutines, so the tracker locks.
type HighlightTracker struct {
	mu      sync.Mutex
	dwell   time.Duration
	gen     uint64
	entries map[string]*highlightEntry
}

// highlightEntry pairs a key's pending timer with the generation it was armed
// under. Expiry compares generations, never timer pointers, so a fired
// callback can only remove the window it belongs to.
type highlightEntry struct {
	timer *time.Timer
	gen   uint64
}

// NewHighlightTracker creates a tracker with the given dwell time. A zero or
// negative dwell falls back to the default.
func NewHighlightTracker(dwell time.Duration) *HighlightTracker {
	if dwell <= 0 {
		dwell = DefaultHighlightDwell
	}
	return &HighlightTracker{
		dwell:   dwell,
		entries: make(map[string]*highlightEntry),
	}
}

// Mark flags a set of keys as recently changed, restarting the dwell window
// for any key already flagged.
func (t *HighlightTracker) Mark(keys map[string]struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range keys {
		if entry, ok := t.entries[key]; ok {
			entry.timer.Stop()
		}
		t.gen++
		entry := &highlightEntry{gen: t.gen}
		t.entries[key] = entry
		k, gen := key, t.gen
		// The callback captures only the key and its generation, both fixed
		// before the timer is armed; expire blocks on the lock until this
		// loop finishes.
		entry.timer = time.AfterFunc(t.dwell, func() {
			t.expire(k, gen)
		})
	}
}

// Active returns the currently flagged keys in sorted order.
func (t *HighlightTracker) Active() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Contains reports whether a key is currently flagged.
func (t *HighlightTracker) Contains(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[key]
	return ok
}

// Stop cancels all pending expiry timers. Used on shutdown.
func (t *HighlightTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, entry := range t.entries {
		entry.timer.Stop()
		delete(t.entries, key)
	}
}

// expire removes a key, but only if its window generation still matches the
// fired timer's. A re-mark that raced the expiry keeps its fresh window.
func (t *HighlightTracker) expire(key string, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[key]; ok && entry.gen == gen {
		delete(t.entries, key)
	}
}
