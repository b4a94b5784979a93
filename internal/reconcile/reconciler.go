// Package reconcile owns the in-memory view of items, auctions and bidders,
// applies decoded feed events to it, and emits persistence write intents.
// The feed gives no referential guarantees: updates and deletions may name
// identifiers that were never listed while the monitor was watching, and the
// reconciler degrades to best-effort records instead of failing.
package reconcile

import (
	"errors"
	"sync"
	"time"

	"empire-monitor/internal/extract"
	"empire-monitor/internal/models"
)

// Identity-critical fields missing from a payload drop the whole event; the
// ingestion loop logs these and continues.
var (
	ErrMissingID     = errors.New("payload carries no item identifier")
	ErrMissingBidder = errors.New("payload carries no bidder identifier")
)

// itemState is what the reconciler remembers about a listed item between
// events. firstEndsAt and originalPrice come from the earliest snapshot
// only; later snapshots never backfill them.
type itemState struct {
	marketName    *string
	firstEndsAt   *int64
	originalPrice *int64
	snapshots     int64
	sellerOnline  *int64
	deleted       bool
}

// auctionState accumulates bid activity per auction identifier, which in
// this marketplace equals the item identifier.
type auctionState struct {
	updates      int64
	reportedBids int64

	// hasMax distinguishes "no bid amount ever observed" from a genuine
	// zero; maxBid and bidderAtMax are meaningless until it is set.
	hasMax      bool
	maxBid      int64
	bidderAtMax int64
}

// Reconciler applies events for a single feed. The keyed state is owned by
// the instance so independent feeds and tests get independent views. A
// single mutex guards the maps; the ingestion path is the only writer but a
// periodic reporter may read concurrently.
type Reconciler struct {
	mu       sync.Mutex
	items    map[int64]*itemState
	auctions map[int64]*auctionState
	now      func() time.Time
}

func New() *Reconciler {
	return &Reconciler{
		items:    make(map[int64]*itemState),
		auctions: make(map[int64]*auctionState),
		now:      time.Now,
	}
}

// ApplyListing upserts the item and appends a snapshot. It reports the item
// identifier and whether this is the first sighting of it in this run.
func (r *Reconciler) ApplyListing(fields map[string]any) ([]WriteOp, int64, bool, error) {
	id, ok := extract.GetInt(fields, "id")
	if !ok {
		return nil, 0, false, ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	st, seen := r.items[id]
	if !seen {
		st = &itemState{}
		r.items[id] = st
	}
	if name := extract.StrPtr(fields, "market_name"); name != nil {
		st.marketName = name
	}
	st.snapshots++
	if !seen {
		st.firstEndsAt = extract.IntPtr(fields, "auction_ends_at")
		st.originalPrice = extract.IntPtr(fields, "purchase_price")
	}
	if status := extract.IntPtr(fields, "user_online_status"); status != nil {
		st.sellerOnline = status
	}

	item := &models.Item{
		ItemID:         id,
		MarketName:     st.marketName,
		FirstSeen:      now,
		LastSeen:       now,
		TotalSnapshots: st.snapshots,
	}
	snap := buildSnapshot(id, fields, now)
	if snap.SellerOnlineStatus == nil {
		// Status events arrive out of band; the last known value fills
		// snapshots whose payload omits it.
		snap.SellerOnlineStatus = st.sellerOnline
	}
	ops := []WriteOp{
		{Kind: OpUpsertItem, FirstSight: !seen, Item: item},
		{Kind: OpInsertSnapshot, Snapshot: snap},
	}
	return ops, id, !seen, nil
}

// ApplyAuctionUpdate appends an auction update row and upserts the bidder.
// The display name is resolved from the item view when present and left
// null otherwise; an unseen auction identifier is not an error.
func (r *Reconciler) ApplyAuctionUpdate(fields map[string]any) ([]WriteOp, error) {
	id, ok := extract.GetInt(fields, "id")
	if !ok {
		return nil, ErrMissingID
	}
	bidderID, ok := extract.GetInt(fields, "auction_highest_bidder")
	if !ok {
		return nil, ErrMissingBidder
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	au := r.auctions[id]
	if au == nil {
		au = &auctionState{}
		r.auctions[id] = au
	}
	au.updates++
	if n, ok := extract.GetInt(fields, "auction_number_of_bids"); ok && n > au.reportedBids {
		au.reportedBids = n
	}
	bid, hasBid := extract.GetInt(fields, "auction_highest_bid")
	if hasBid && (!au.hasMax || bid >= au.maxBid) {
		au.hasMax = true
		au.maxBid = bid
		au.bidderAtMax = bidderID
	}

	var itemID *int64
	var name *string
	if st, seen := r.items[id]; seen {
		linked := id
		itemID = &linked
		name = st.marketName
	}

	update := &models.AuctionUpdate{
		AuctionID:             id,
		ItemID:                itemID,
		MarketName:            name,
		UpdateTime:            now,
		HighestBid:            extract.IntPtr(fields, "auction_highest_bid"),
		HighestBidder:         &bidderID,
		NumberOfBids:          extract.IntPtr(fields, "auction_number_of_bids"),
		AboveRecommendedPrice: extract.FloatPtr(fields, "above_recommended_price"),
		EndsAt:                extract.IntPtr(fields, "auction_ends_at"),
	}

	var spent int64
	if hasBid {
		spent = bid
	}
	bidder := &models.Bidder{
		BidderID:   bidderID,
		FirstSeen:  now,
		LastSeen:   now,
		TotalBids:  1,
		HighestBid: spent,
		TotalSpent: spent,
	}

	return []WriteOp{
		{Kind: OpInsertAuctionUpdate, Auction: update},
		{Kind: OpUpsertBidder, Bidder: bidder},
	}, nil
}

// ApplyDeletion handles a removal event, which may batch several item
// identifiers. Known items are soft-deleted; unknown identifiers still get
// a classified deletion record with nulled linkage.
func (r *Reconciler) ApplyDeletion(ids []int64) []WriteOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()

	var ops []WriteOp
	for _, id := range ids {
		out := classify(r.items[id], r.auctions[id])

		if st := r.items[id]; st != nil && !st.deleted {
			st.deleted = true
			ops = append(ops, WriteOp{Kind: OpMarkItemDeleted, ItemID: id, DeletedAt: now})
		}

		ops = append(ops, WriteOp{Kind: OpInsertDeletedItem, Deleted: &models.DeletedItem{
			ItemID:         id,
			DeletedAt:      now,
			SaleType:       out.SaleType,
			HadBids:        out.HadBids,
			FinalBidCount:  out.BidCount,
			FinalBidAmount: out.FinalBidAmount,
			FinalBidder:    out.FinalBidder,
			WasAuction:     out.WasAuction,
			OriginalPrice:  out.OriginalPrice,
		}})
	}
	return ops
}

// ApplySellerStatus folds a seller online-status change into the item view.
// No row is emitted; the remembered status surfaces through subsequent
// snapshots of the seller's items whose payloads omit the field.
func (r *Reconciler) ApplySellerStatus(fields map[string]any) error {
	id, ok := extract.GetInt(fields, "id")
	if !ok {
		return ErrMissingID
	}
	status := extract.IntPtr(fields, "user_online_status")
	if status == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if st, seen := r.items[id]; seen {
		st.sellerOnline = status
	}
	return nil
}

func buildSnapshot(id int64, fields map[string]any, now time.Time) *models.ItemSnapshot {
	return &models.ItemSnapshot{
		ItemID:       id,
		SnapshotTime: now,

		MarketName:            extract.StrPtr(fields, "market_name"),
		MarketValue:           extract.IntPtr(fields, "market_value"),
		SuggestedPrice:        extract.IntPtr(fields, "suggested_price"),
		PurchasePrice:         extract.IntPtr(fields, "purchase_price"),
		AboveRecommendedPrice: extract.FloatPtr(fields, "above_recommended_price"),

		Type:     extract.StrPtr(fields, "type"),
		Category: extract.StrPtr(fields, "category"),
		SubType:  extract.StrPtr(fields, "sub_type"),
		Rarity:   extract.StrPtr(fields, "rarity"),

		Wear:     extract.FloatPtr(fields, "wear"),
		WearName: extract.StrPtr(fields, "wear_name"),

		AuctionEndsAt:        extract.IntPtr(fields, "auction_ends_at"),
		AuctionHighestBid:    extract.IntPtr(fields, "auction_highest_bid"),
		AuctionHighestBidder: extract.IntPtr(fields, "auction_highest_bidder"),
		AuctionNumberOfBids:  extract.IntPtr(fields, "auction_number_of_bids"),

		SellerOnlineStatus:       extract.IntPtr(fields, "user_online_status"),
		SellerDeliveryRateRecent: extract.FloatPtr(fields, "delivery_rate_recent"),
		SellerDeliveryRateLong:   extract.FloatPtr(fields, "delivery_rate_long"),
		SellerDeliveryTimeRecent: extract.IntPtr(fields, "delivery_time_minutes_recent"),
		SellerDeliveryTimeLong:   extract.IntPtr(fields, "delivery_time_minutes_long"),
		SellerSteamLevelMin:      extract.IntPtr(fields, "steam_level_min_range"),
		SellerSteamLevelMax:      extract.IntPtr(fields, "steam_level_max_range"),

		PublishedAt:       extract.StrPtr(fields, "published_at"),
		IsCommodity:       extract.BoolVal(fields, "is_commodity"),
		PriceIsUnreliable: extract.BoolVal(fields, "price_is_unreliable"),
	}
}
