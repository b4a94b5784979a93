// Package sink turns reconciler write intents into database rows. The
// reconciler stays storage-free; everything SQL-shaped lives here.
package sink

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"empire-monitor/internal/models"
	"empire-monitor/internal/reconcile"
)

// Writer applies write intents synchronously against a gorm handle.
type Writer struct {
	db *gorm.DB
}

func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db}
}

// Apply executes the ops in order. The first failure stops the batch so a
// dependent insert never lands before the row it references.
func (w *Writer) Apply(ops []reconcile.WriteOp) error {
	for _, op := range ops {
		if err := w.applyOne(op); err != nil {
			return fmt.Errorf("%s: %w", op.Kind, err)
		}
	}
	return nil
}

func (w *Writer) applyOne(op reconcile.WriteOp) error {
	switch op.Kind {
	case reconcile.OpUpsertItem:
		return w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"market_name":     gorm.Expr("COALESCE(VALUES(market_name), market_name)"),
				"last_seen":       gorm.Expr("VALUES(last_seen)"),
				"total_snapshots": gorm.Expr("total_snapshots + 1"),
			}),
		}).Create(op.Item).Error

	case reconcile.OpInsertSnapshot:
		return w.db.Create(op.Snapshot).Error

	case reconcile.OpInsertAuctionUpdate:
		return w.db.Create(op.Auction).Error

	case reconcile.OpUpsertBidder:
		return w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "bidder_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_bids":  gorm.Expr("total_bids + 1"),
				"highest_bid": gorm.Expr("GREATEST(highest_bid, VALUES(highest_bid))"),
				"total_spent": gorm.Expr("total_spent + VALUES(total_spent)"),
				"last_seen":   gorm.Expr("VALUES(last_seen)"),
			}),
		}).Create(op.Bidder).Error

	case reconcile.OpMarkItemDeleted:
		return w.db.Model(&models.Item{}).
			Where("item_id = ? AND deleted_at IS NULL", op.ItemID).
			Update("deleted_at", op.DeletedAt).Error

	case reconcile.OpInsertDeletedItem:
		return w.db.Create(op.Deleted).Error
	}
	return fmt.Errorf("unknown op kind %d", op.Kind)
}
