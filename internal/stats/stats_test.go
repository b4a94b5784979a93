package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"empire-monitor/internal/models"
	"empire-monitor/internal/reconcile"
	"empire-monitor/internal/stats"
)

func TestObserveCountsByKind(t *testing.T) {
	a := stats.NewAggregator()

	a.Observe([]reconcile.WriteOp{
		{Kind: reconcile.OpUpsertItem, FirstSight: true},
		{Kind: reconcile.OpInsertSnapshot},
	})
	a.Observe([]reconcile.WriteOp{
		{Kind: reconcile.OpUpsertItem}, // repeat sighting, not a new item
		{Kind: reconcile.OpInsertSnapshot},
	})
	a.Observe([]reconcile.WriteOp{
		{Kind: reconcile.OpInsertAuctionUpdate},
		{Kind: reconcile.OpUpsertBidder},
	})
	a.Observe([]reconcile.WriteOp{
		{Kind: reconcile.OpMarkItemDeleted},
		{Kind: reconcile.OpInsertDeletedItem, Deleted: &models.DeletedItem{SaleType: models.SaleAuctionSold}},
	})
	a.Observe([]reconcile.WriteOp{
		{Kind: reconcile.OpInsertDeletedItem, Deleted: &models.DeletedItem{SaleType: models.SaleDelisted}},
	})

	got := a.Snapshot()
	assert.Equal(t, uint64(1), got.Items)
	assert.Equal(t, uint64(2), got.Snapshots)
	assert.Equal(t, uint64(1), got.AuctionUpdates)
	assert.Equal(t, uint64(2), got.Deletions)
	assert.Equal(t, uint64(1), got.BySaleType[models.SaleAuctionSold])
	assert.Equal(t, uint64(1), got.BySaleType[models.SaleDelisted])
	assert.Zero(t, got.BySaleType[models.SaleAuctionExpired])
}

func TestFrameAndDropCounters(t *testing.T) {
	a := stats.NewAggregator()

	for i := 0; i < 3; i++ {
		a.FrameSeen()
	}
	a.EventDropped()

	got := a.Snapshot()
	assert.Equal(t, uint64(3), got.Frames)
	assert.Equal(t, uint64(1), got.DroppedEvents)
	assert.False(t, got.StartedAt.IsZero())
}

func TestSnapshotIsACopy(t *testing.T) {
	a := stats.NewAggregator()
	a.Observe([]reconcile.WriteOp{
		{Kind: reconcile.OpInsertDeletedItem, Deleted: &models.DeletedItem{SaleType: models.SaleDelisted}},
	})

	first := a.Snapshot()
	first.BySaleType[models.SaleDelisted] = 99

	assert.Equal(t, uint64(1), a.Snapshot().BySaleType[models.SaleDelisted])
}
