// Package stats keeps running counters over reconciled records. It is a
// read-only consumer of reconciler output and does nothing beyond monotonic
// counting and snapshotting the current totals.
package stats

import (
	"sync"
	"time"

	"empire-monitor/internal/reconcile"
)

// Totals is a point-in-time copy of the counters.
type Totals struct {
	Items          uint64            `json:"items"`
	Snapshots      uint64            `json:"snapshots"`
	AuctionUpdates uint64            `json:"auction_updates"`
	Deletions      uint64            `json:"deletions"`
	BySaleType     map[string]uint64 `json:"by_sale_type"`
	Frames         uint64            `json:"frames"`
	DroppedEvents  uint64            `json:"dropped_events"`
	StartedAt      time.Time         `json:"started_at"`
}

type Aggregator struct {
	mu             sync.Mutex
	items          uint64
	snapshots      uint64
	auctionUpdates uint64
	deletions      uint64
	bySaleType     map[string]uint64
	frames         uint64
	dropped        uint64
	startedAt      time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		bySaleType: make(map[string]uint64),
		startedAt:  time.Now(),
	}
}

// Observe counts the write intents produced by one reconciled event.
func (a *Aggregator) Observe(ops []reconcile.WriteOp) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, op := range ops {
		switch op.Kind {
		case reconcile.OpUpsertItem:
			if op.FirstSight {
				a.items++
			}
		case reconcile.OpInsertSnapshot:
			a.snapshots++
		case reconcile.OpInsertAuctionUpdate:
			a.auctionUpdates++
		case reconcile.OpInsertDeletedItem:
			a.deletions++
			if op.Deleted != nil {
				a.bySaleType[op.Deleted.SaleType]++
			}
		}
	}
}

// FrameSeen counts one inbound frame, decoded or not.
func (a *Aggregator) FrameSeen() {
	a.mu.Lock()
	a.frames++
	a.mu.Unlock()
}

// EventDropped counts an event discarded for a missing identity field.
func (a *Aggregator) EventDropped() {
	a.mu.Lock()
	a.dropped++
	a.mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func (a *Aggregator) Snapshot() Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	bySale := make(map[string]uint64, len(a.bySaleType))
	for k, v := range a.bySaleType {
		bySale[k] = v
	}
	return Totals{
		Items:          a.items,
		Snapshots:      a.snapshots,
		AuctionUpdates: a.auctionUpdates,
		Deletions:      a.deletions,
		BySaleType:     bySale,
		Frames:         a.frames,
		DroppedEvents:  a.dropped,
		StartedAt:      a.startedAt,
	}
}
