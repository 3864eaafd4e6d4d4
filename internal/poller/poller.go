// Package poller periodically fetches the device's alert snapshot.
package poller

import (
	"context"
	"log"
	"time"

	"github.com/alertdeck/alertdeck/internal/alerts"
	"github.com/alertdeck/alertdeck/internal/observability/metrics"
)

// DefaultInterval is the snapshot poll cadence.
const DefaultInterval = 15 * time.Second

// Snapshot is one successful fetch, tagged with its retrieval time. Each
// snapshot replaces the previous one for reconciliation; staleness is bounded
// by the poll interval.
type Snapshot struct {
	Records   []alerts.Record
	FetchedAt time.Time
}

// Fetcher is the slice of the device client the poller needs.
type Fetcher interface {
	ListAlerts(ctx context.Context) ([]alerts.Record, error)
}

// Poller fetches the alert snapshot on a fixed interval and hands each
// successful result to the sink. Fetch failures are logged and counted; the
// previous snapshot stays in effect, so a flaky device degrades to a stale
// view, never an empty one.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	sink     func(Snapshot)
}

// New creates a poller delivering snapshots to sink. A non-positive interval
// falls back to the default.
func New(fetcher Fetcher, interval time.Duration, sink func(Snapshot)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{fetcher: fetcher, interval: interval, sink: sink}
}

// Run polls until the context is cancelled. One fetch happens immediately so
// the view is populated before the first tick. A fetch that completes after
// cancellation is discarded, not delivered.
func (p *Poller) Run(ctx context.Context) {
	p.fetchOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Poller: stopped")
			return
		case <-ticker.C:
			p.fetchOnce(ctx)
		}
	}
}

func (p *Poller) fetchOnce(ctx context.Context) {
	records, err := p.fetcher.ListAlerts(ctx)
	fetchedAt := time.Now()
	if err != nil {
		metrics.PollFailures.Inc()
		log.Printf("Poller: snapshot fetch failed: %v", err)
		return
	}

	// The fetch may have raced cancellation; never deliver after stop.
	select {
	case <-ctx.Done():
		log.Printf("Poller: discarding snapshot fetched after cancellation")
		return
	default:
	}

	p.sink(Snapshot{Records: records, FetchedAt: fetchedAt})
}
