package alerts

import (
	"reflect"
	"testing"
)

func TestPauseBuffer_RunningPassesThrough(t *testing.T) {
	var b PauseBuffer
	live := []Record{rec("s1", "a", 10), rec("s2", "b", 20)}

	visible, pending := b.Tick(live)
	if !reflect.DeepEqual(visible, live) {
		t.Error("expected live list passed through while running")
	}
	if pending != 0 {
		t.Errorf("expected pending 0, got %d", pending)
	}
}

func TestPauseBuffer_FreezesView(t *testing.T) {
	var b PauseBuffer
	frozen := []Record{rec("s1", "a", 10)}
	b.Pause(frozen)

	live := []Record{
		rec("s1", "a", 10),
		rec("s2", "b", 20),
		rec("s3", "c", 30),
	}
	visible, pending := b.Tick(live)

	if len(visible) != 1 || visible[0].AlarmName != "a" {
		t.Errorf("expected frozen list unchanged, got %v", visible)
	}
	if pending != 2 {
		t.Errorf("expected pending 2, got %d", pending)
	}
}

func TestPauseBuffer_FrozenListIsACopy(t *testing.T) {
	var b PauseBuffer
	list := []Record{rec("s1", "a", 10)}
	b.Pause(list)

	list[0].AlarmName = "mutated"
	visible, _ := b.Tick(list)
	if visible[0].AlarmName != "a" {
		t.Error("frozen snapshot must not alias the caller's slice")
	}
}

func TestPauseBuffer_PendingClampedAtZero(t *testing.T) {
	var b PauseBuffer
	b.Pause([]Record{rec("s1", "a", 10), rec("s2", "b", 20)})

	// Supersession while paused can shrink the live list.
	visible, pending := b.Tick([]Record{rec("s1", "a", 11)})
	if pending != 0 {
		t.Errorf("expected pending clamped to 0, got %d", pending)
	}
	if len(visible) != 2 {
		t.Errorf("expected frozen list of 2, got %d", len(visible))
	}
}

func TestPauseBuffer_DoublePauseKeepsOriginalSnapshot(t *testing.T) {
	var b PauseBuffer
	b.Pause([]Record{rec("s1", "a", 10)})
	b.Pause([]Record{rec("s1", "a", 10), rec("s2", "b", 20)})

	visible, _ := b.Tick(nil)
	if len(visible) != 1 {
		t.Errorf("expected first frozen snapshot kept, got %d records", len(visible))
	}
}

func TestPauseBuffer_ResumeConservation(t *testing.T) {
	// Reconciling after resume must match what continuous reconciliation
	// would have produced at the same moment.
	snapshot := []Record{rec("snap", "x", 40)}

	livePush := []Record{rec("s1", "a", 10)}
	var b PauseBuffer
	b.Pause(livePush)

	// Events arrive while paused.
	livePush = append([]Record{rec("s2", "b", 50), rec("s1", "a", 60)}, livePush...)

	// Frozen view does not include them.
	visible, pending := b.Tick(livePush)
	if len(visible) != 1 {
		t.Fatalf("expected frozen view of 1, got %d", len(visible))
	}
	if pending != 2 {
		t.Errorf("expected pending 2, got %d", pending)
	}

	b.Resume()
	visible, pending = b.Tick(livePush)
	if pending != 0 {
		t.Errorf("expected pending 0 after resume, got %d", pending)
	}

	resumed := Reconcile(visible, snapshot)
	continuous := Reconcile(livePush, snapshot)
	if !reflect.DeepEqual(resumed, continuous) {
		t.Error("post-resume reconciliation must equal continuous reconciliation")
	}
}
