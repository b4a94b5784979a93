package reconcile

import (
	"time"

	"empire-monitor/internal/models"
)

// OpKind discriminates persistence write intents.
type OpKind int

const (
	OpUpsertItem OpKind = iota
	OpInsertSnapshot
	OpInsertAuctionUpdate
	OpUpsertBidder
	OpMarkItemDeleted
	OpInsertDeletedItem
)

func (k OpKind) String() string {
	switch k {
	case OpUpsertItem:
		return "upsert_item"
	case OpInsertSnapshot:
		return "insert_snapshot"
	case OpInsertAuctionUpdate:
		return "insert_auction_update"
	case OpUpsertBidder:
		return "upsert_bidder"
	case OpMarkItemDeleted:
		return "mark_item_deleted"
	case OpInsertDeletedItem:
		return "insert_deleted_item"
	}
	return "unknown"
}

// WriteOp is one logical persistence operation emitted by the reconciler.
// The reconciler holds no storage connection; the caller forwards ops to a
// sink which owns schema and durability. Exactly one payload field is set
// for a given Kind.
type WriteOp struct {
	Kind OpKind

	// FirstSight is set on OpUpsertItem when the identifier has not been
	// observed before in this run.
	FirstSight bool

	Item     *models.Item
	Snapshot *models.ItemSnapshot
	Auction  *models.AuctionUpdate
	Bidder   *models.Bidder
	Deleted  *models.DeletedItem

	// ItemID/DeletedAt carry the OpMarkItemDeleted payload.
	ItemID    int64
	DeletedAt time.Time
}
