package alerts

// PauseBuffer freezes the push-side alert view while the operator inspects
// it. While paused, the frozen list is what the operator sees; incoming push
// events are counted, not itemized. On resume the frozen list is discarded
// and the live list takes over, so nothing is permanently lost.
//
// The buffer is the only long-lived mutable state in the core and is owned
// exclusively by the engine goroutine; it does no locking of its own.
type PauseBuffer struct {
	paused    bool
	frozen    []Record
	frozenLen int
}

// Paused reports whether the view is currently frozen.
func (b *PauseBuffer) Paused() bool {
	return b.paused
}

// Pause freezes the current push list. Pausing while already paused keeps the
// original frozen snapshot.
func (b *PauseBuffer) Pause(currentPushList []Record) {
	if b.paused {
		return
	}
	b.paused = true
	b.frozen = make([]Record, len(currentPushList))
	copy(b.frozen, currentPushList)
	b.frozenLen = len(currentPushList)
}

// Resume discards the frozen snapshot and returns to the live view.
func (b *PauseBuffer) Resume() {
	b.paused = false
	b.frozen = nil
	b.frozenLen = 0
}

// Tick returns the list the operator should see and the pending-event count.
// When running, the live list passes straight through. When paused, the
// frozen list is returned unchanged and the pending count is the length delta
// between the live list and the snapshot taken at pause time, clamped at
// zero: events superseded while paused can shrink the live list, and a coarse
// counter is all the display needs.
func (b *PauseBuffer) Tick(livePushList []Record) (visible []Record, pending int) {
	if !b.paused {
		return livePushList, 0
	}
	pending = len(livePushList) - b.frozenLen
	if pending < 0 {
		pending = 0
	}
	return b.frozen, pending
}
