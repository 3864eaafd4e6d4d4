// Package engine drives alert reconciliation. One goroutine owns all mutable
// state: the push buffers, the latest snapshot, the pause buffer, and the
// previous canonical set. Both triggers (push event arrival, poll completion)
// funnel into that goroutine, so the reconcile/highlight/bucketize path runs
// without locks and never suspends.
package engine

import (
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/alertdeck/alertdeck/internal/alerts"
	"github.com/alertdeck/alertdeck/internal/observability/metrics"
	"github.com/alertdeck/alertdeck/internal/poller"
	"github.com/alertdeck/alertdeck/internal/stream"
	"github.com/alertdeck/alertdeck/internal/telemetry"
)

// Notifier is told about alerts that are new to the canonical set. Calls
// happen on the engine goroutine; implementations must not block.
type Notifier interface {
	NotifyNewAlerts(records []alerts.Record)
}

// View is the immutable presentation snapshot published after every
// reconciliation pass.
type View struct {
	Alerts       []alerts.Record
	Paused       bool
	PendingCount int
	Highlights   []string
	Connected    bool
	SnapshotAt   time.Time
	ReconciledAt time.Time
}

// Options tunes the engine.
type Options struct {
	// HighlightDwell overrides the highlight dwell time. Zero keeps the
	// default.
	HighlightDwell time.Duration

	// BufferCapacity overrides the per-category stream buffer cap. Zero
	// keeps the default.
	BufferCapacity int

	// Notifier, when set, receives alerts newly admitted to the canonical
	// set.
	Notifier Notifier
}

type commandKind int

const (
	cmdPause commandKind = iota
	cmdResume
)

type command struct {
	kind  commandKind
	reply chan struct{}
}

// Engine reconciles the push channel and the snapshot poller into one
// canonical alert view.
type Engine struct {
	pushCh chan alerts.Record
	snapCh chan poller.Snapshot
	cmdCh  chan command
	stop   chan struct{}
	done   chan struct{}

	// Owned exclusively by the run goroutine.
	pushBuf    *telemetry.Buffers[alerts.Record]
	snapshot   []alerts.Record
	snapshotAt time.Time
	prev       alerts.CanonicalSet
	pause      alerts.PauseBuffer

	highlights *alerts.HighlightTracker
	notifier   Notifier
	primed     bool

	// Telemetry categories share the buffer mechanism but bypass
	// reconciliation entirely.
	telem *telemetry.Buffers[json.RawMessage]

	viewMu    sync.RWMutex
	view      View
	connected bool
}

// New creates an engine. Call Start before feeding it events.
func New(opts Options) *Engine {
	return &Engine{
		pushCh:     make(chan alerts.Record, 256),
		snapCh:     make(chan poller.Snapshot, 4),
		cmdCh:      make(chan command),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		pushBuf:    telemetry.NewBuffers[alerts.Record](opts.BufferCapacity),
		telem:      telemetry.NewBuffers[json.RawMessage](opts.BufferCapacity),
		highlights: alerts.NewHighlightTracker(opts.HighlightDwell),
		notifier:   opts.Notifier,
	}
}

// Start launches the engine goroutine.
func (e *Engine) Start() {
	go e.run()
}

// Stop shuts the engine down and cancels pending highlight timers.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
	e.highlights.Stop()
}

// HandleEvent routes a decoded push event. Alert payloads enter the
// reconciliation path; telemetry updates land in their category buffer and
// go no further.
func (e *Engine) HandleEvent(event stream.Event) {
	switch ev := event.(type) {
	case stream.AlertProcessed:
		select {
		case e.pushCh <- ev.Record:
		case <-e.stop:
		}
	case stream.DataUpdate:
		e.telem.Push(ev.Object, ev.Payload)
	default:
		// The multiplexer drops unrecognized events before they get here.
		log.Printf("Engine: ignoring unexpected event type %T", event)
	}
}

// HandleSnapshot feeds a completed poll fetch into the engine.
func (e *Engine) HandleSnapshot(snap poller.Snapshot) {
	select {
	case e.snapCh <- snap:
	case <-e.stop:
	}
}

// Pause freezes the visible push-side view. Returns once the pause has taken
// effect.
func (e *Engine) Pause() {
	e.send(cmdPause)
}

// Resume discards the frozen view and catches up against the live push list.
func (e *Engine) Resume() {
	e.send(cmdResume)
}

// SetConnected records the coarse device liveness flag on the view.
func (e *Engine) SetConnected(connected bool) {
	e.viewMu.Lock()
	e.connected = connected
	e.view.Connected = connected
	e.viewMu.Unlock()
}

// View returns the most recently published presentation snapshot. Highlights
// are read live from the tracker so dwell expiry shows up between passes.
func (e *Engine) View() View {
	e.viewMu.RLock()
	view := e.view
	e.viewMu.RUnlock()
	view.Highlights = e.highlights.Active()
	return view
}

// Telemetry returns the buffered raw records for a telemetry category, most
// recent first.
func (e *Engine) Telemetry(category string) []json.RawMessage {
	return e.telem.List(category)
}

// TelemetryCategories returns the telemetry categories that currently hold
// records, sorted.
func (e *Engine) TelemetryCategories() []string {
	categories := e.telem.Categories()
	sort.Strings(categories)
	return categories
}

func (e *Engine) send(kind commandKind) {
	cmd := command{kind: kind, reply: make(chan struct{})}
	select {
	case e.cmdCh <- cmd:
		<-cmd.reply
	case <-e.stop:
	}
}

func (e *Engine) run() {
	defer close(e.done)

	for {
		select {
		case <-e.stop:
			return
		case rec := <-e.pushCh:
			e.pushBuf.Push(telemetry.CategoryAlerts, rec)
			e.reconcilePass()
		case snap := <-e.snapCh:
			e.snapshot = snap.Records
			e.snapshotAt = snap.FetchedAt
			e.reconcilePass()
		case cmd := <-e.cmdCh:
			switch cmd.kind {
			case cmdPause:
				e.pause.Pause(e.pushBuf.List(telemetry.CategoryAlerts))
				log.Printf("Engine: view paused")
			case cmdResume:
				e.pause.Resume()
				log.Printf("Engine: view resumed")
			}
			e.reconcilePass()
			close(cmd.reply)
		}
	}
}

// reconcilePass rebuilds the canonical set from the visible push list and
// the latest snapshot, then publishes a fresh view.
func (e *Engine) reconcilePass() {
	live := e.pushBuf.List(telemetry.CategoryAlerts)
	visible, pending := e.pause.Tick(live)

	set := alerts.Reconcile(visible, e.snapshot)

	deltas := alerts.ComputeDeltas(e.prev, set)
	e.highlights.Mark(deltas)

	// The first pass seeds the baseline; notifying on it would replay the
	// device's whole backlog.
	if e.notifier != nil && e.primed {
		if fresh := e.newArrivals(set); len(fresh) > 0 {
			e.notifier.NotifyNewAlerts(fresh)
		}
	}
	e.prev = set
	e.primed = true

	metrics.ReconcilePasses.Inc()
	metrics.CanonicalSize.Set(float64(set.Len()))

	e.viewMu.Lock()
	e.view = View{
		Alerts:       set.Records,
		Paused:       e.pause.Paused(),
		PendingCount: pending,
		Highlights:   e.highlights.Active(),
		Connected:    e.connected,
		SnapshotAt:   e.snapshotAt,
		ReconciledAt: time.Now(),
	}
	e.viewMu.Unlock()
}

// newArrivals returns records whose identity was absent from the previous
// canonical set.
func (e *Engine) newArrivals(current alerts.CanonicalSet) []alerts.Record {
	var fresh []alerts.Record
	for _, rec := range current.Records {
		if _, ok := e.prev.Get(rec.IdentityKey()); !ok {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}
