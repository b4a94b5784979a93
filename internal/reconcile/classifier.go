package reconcile

import (
	"empire-monitor/internal/models"
)

// Outcome is the classified result of an item leaving the feed. It is a
// heuristic over observed events, not an authoritative signal: when the
// monitor started after an item was listed, or missed bid events, the
// classification can be wrong, and that degraded answer is recorded as-is.
type Outcome struct {
	SaleType       string
	WasAuction     bool
	HadBids        bool
	BidCount       int64
	FinalBidAmount *int64
	FinalBidder    *int64
	OriginalPrice  *int64
}

// classify runs the fixed decision order for a removed identifier:
//
//  1. wasAuction: the earliest snapshot carried a scheduled auction end, or
//     any bid update exists (bids imply an auction even when the removal
//     outruns every snapshot).
//  2. not an auction        -> delisted
//  3. auction, zero bids    -> auction_expired
//  4. auction, bids present -> auction_sold, with the highest bid and its
//     bidder carried over when an amount was observed.
//
// Either state may be nil for identifiers the monitor never saw.
func classify(it *itemState, au *auctionState) Outcome {
	var bidCount int64
	hadUpdates := au != nil && au.updates > 0
	if au != nil {
		bidCount = au.reportedBids
		if au.updates > bidCount {
			bidCount = au.updates
		}
	}

	wasAuction := hadUpdates || (it != nil && it.firstEndsAt != nil)

	out := Outcome{
		WasAuction: wasAuction,
		BidCount:   bidCount,
	}
	if it != nil {
		out.OriginalPrice = it.originalPrice
	}

	switch {
	case !wasAuction:
		out.SaleType = models.SaleDelisted
	case bidCount == 0:
		out.SaleType = models.SaleAuctionExpired
	default:
		out.SaleType = models.SaleAuctionSold
		out.HadBids = true
		// Bid updates may omit the amount; without one the final amount
		// and bidder stay null rather than reporting a fabricated zero.
		if au.hasMax {
			amount := au.maxBid
			bidder := au.bidderAtMax
			out.FinalBidAmount = &amount
			out.FinalBidder = &bidder
		}
	}
	return out
}
