package reconcile

import (
	"empire-monitor/internal/extract"
)

// Field specification tables consumed by the generic extractor. Every field
// is optionally present; the tables are the data-driven contract for what
// each event kind may carry.

// ListingFields covers a full item listing payload, including the auction
// view and the seller reliability view when present.
var ListingFields = []extract.FieldSpec{
	{Name: "id", Kind: extract.Int},
	{Name: "market_name", Kind: extract.String},
	{Name: "type", Kind: extract.String},
	{Name: "category", Kind: extract.String},
	{Name: "sub_type", Kind: extract.String},
	{Name: "rarity", Kind: extract.String},
	{Name: "wear", Kind: extract.Float},
	{Name: "wear_name", Kind: extract.String},
	{Name: "market_value", Kind: extract.Int},
	{Name: "suggested_price", Kind: extract.Int},
	{Name: "purchase_price", Kind: extract.Int},
	{Name: "above_recommended_price", Kind: extract.Float},
	{Name: "published_at", Kind: extract.String},
	{Name: "is_commodity", Kind: extract.Bool},
	{Name: "price_is_unreliable", Kind: extract.Bool},
	{Name: "auction_ends_at", Kind: extract.Int},
	{Name: "auction_highest_bid", Kind: extract.Int},
	{Name: "auction_highest_bidder", Kind: extract.Int},
	{Name: "auction_number_of_bids", Kind: extract.Int},
	{Name: "user_online_status", Kind: extract.Int},
	{Name: "delivery_rate_recent", Kind: extract.Float},
	{Name: "delivery_rate_long", Kind: extract.Float},
	{Name: "delivery_time_minutes_recent", Kind: extract.Int},
	{Name: "delivery_time_minutes_long", Kind: extract.Int},
	{Name: "steam_level_min_range", Kind: extract.Int},
	{Name: "steam_level_max_range", Kind: extract.Int},
}

// SearchFields are the classification fields that also appear inside the
// embedded "item_search" object. Listing payloads reuse these key names at
// two nesting levels; the ingestion path extracts them from the isolated
// item_search section so the nested values win over the first top-level hit.
var SearchFields = []extract.FieldSpec{
	{Name: "category", Kind: extract.String},
	{Name: "sub_type", Kind: extract.String},
	{Name: "rarity", Kind: extract.String},
}

// AuctionFields covers a bid-change payload.
var AuctionFields = []extract.FieldSpec{
	{Name: "id", Kind: extract.Int},
	{Name: "auction_highest_bid", Kind: extract.Int},
	{Name: "auction_highest_bidder", Kind: extract.Int},
	{Name: "auction_number_of_bids", Kind: extract.Int},
	{Name: "above_recommended_price", Kind: extract.Float},
	{Name: "auction_ends_at", Kind: extract.Int},
}

// SellerStatusFields covers a seller online-status change payload.
var SellerStatusFields = []extract.FieldSpec{
	{Name: "id", Kind: extract.Int},
	{Name: "user_online_status", Kind: extract.Int},
}
