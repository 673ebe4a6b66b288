// Package monitor drives the live dashboard: a background refresher that
// publishes immutable scan snapshots, and a render loop that draws them
// onto the terminal at a fixed tick.
package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"ironfly/internal/scan"
)

// Snapshot is one complete capture of dashboard data. It is never mutated
// after publication; a new cycle replaces the whole value.
type Snapshot struct {
	Tier1      []string
	Tier2      []string
	NearMisses []scan.NearMiss
	Metrics    map[string]scan.MetricSet
	Captured   time.Time
}

// Refresher owns the periodic scan cycle. It publishes each completed
// Snapshot with a single atomic pointer swap, so readers always see either
// the previous complete snapshot or the new one. Readers never lock.
type Refresher struct {
	scanner  scan.Scanner
	interval time.Duration
	log      *slog.Logger

	cur     atomic.Pointer[Snapshot]
	trigger chan struct{}
	now     func() time.Time
}

// NewRefresher builds a refresher around the scan contract.
func NewRefresher(scanner scan.Scanner, interval time.Duration, log *slog.Logger) *Refresher {
	return &Refresher{
		scanner:  scanner,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		log:      log,
		now:      time.Now,
	}
}

// Latest returns the most recent published snapshot, or nil before the
// first cycle completes.
func (r *Refresher) Latest() *Snapshot {
	return r.cur.Load()
}

// TriggerRefresh requests an out-of-cycle scan. The request is dropped if
// one is already queued or a cycle is in flight when it would run; at most
// one scan is ever outstanding.
func (r *Refresher) TriggerRefresh() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run executes scan cycles until the context is cancelled. A cycle failure
// keeps the previous snapshot in place.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.cycle(ctx)
		case <-r.trigger:
			r.cycle(ctx)
		}
	}
}

func (r *Refresher) cycle(ctx context.Context) {
	res, err := r.scanner.Scan(ctx)
	// A trigger that arrived while this cycle was in flight is already
	// satisfied by it.
	select {
	case <-r.trigger:
	default:
	}
	if err != nil {
		r.log.Error("scan cycle failed", "error", err)
		return
	}
	r.cur.Store(buildSnapshot(res, r.now()))
}

// buildSnapshot partitions a scan result into the two tier panels.
func buildSnapshot(res *scan.Result, captured time.Time) *Snapshot {
	snap := &Snapshot{
		NearMisses: res.NearMisses,
		Metrics:    res.Metrics,
		Captured:   captured,
	}
	for _, sym := range res.Recommended {
		m, ok := res.Metrics[sym]
		if !ok {
			continue
		}
		if m.Tier == 2 {
			snap.Tier2 = append(snap.Tier2, sym)
		} else {
			snap.Tier1 = append(snap.Tier1, sym)
		}
	}
	return snap
}

// Detail fetches the iron-fly parameters for one candidate on demand.
func (r *Refresher) Detail(ctx context.Context, symbol string) (*scan.StrategyDetail, error) {
	return r.scanner.StrategyDetail(ctx, symbol)
}
