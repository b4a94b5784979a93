package models

import (
	"time"
)

// Item is the master registry row, one per marketplace item identifier.
// Items are never physically deleted; a removal event stamps DeletedAt.
type Item struct {
	ItemID         int64      `json:"item_id" gorm:"primaryKey;autoIncrement:false"`
	MarketName     *string    `json:"market_name" gorm:"index"`
	FirstSeen      time.Time  `json:"first_seen" gorm:"autoCreateTime"`
	LastSeen       time.Time  `json:"last_seen"`
	TotalSnapshots int64      `json:"total_snapshots" gorm:"default:0"`
	DeletedAt      *time.Time `json:"deleted_at"`
}

// ItemSnapshot is one append-only observation of an item's full state,
// one row per listing event even for a repeated identifier.
type ItemSnapshot struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ItemID       int64     `json:"item_id" gorm:"index;not null"`
	SnapshotTime time.Time `json:"snapshot_time" gorm:"index;autoCreateTime"`

	MarketName            *string  `json:"market_name" gorm:"index"`
	MarketValue           *int64   `json:"market_value"`
	SuggestedPrice        *int64   `json:"suggested_price"`
	PurchasePrice         *int64   `json:"purchase_price"`
	AboveRecommendedPrice *float64 `json:"above_recommended_price"`

	Type     *string `json:"type"`
	Category *string `json:"category"`
	SubType  *string `json:"sub_type"`
	Rarity   *string `json:"rarity"`

	Wear     *float64 `json:"wear"`
	WearName *string  `json:"wear_name"`

	AuctionEndsAt        *int64 `json:"auction_ends_at"`
	AuctionHighestBid    *int64 `json:"auction_highest_bid"`
	AuctionHighestBidder *int64 `json:"auction_highest_bidder"`
	AuctionNumberOfBids  *int64 `json:"auction_number_of_bids"`

	SellerOnlineStatus       *int64   `json:"seller_online_status"`
	SellerDeliveryRateRecent *float64 `json:"seller_delivery_rate_recent"`
	SellerDeliveryRateLong   *float64 `json:"seller_delivery_rate_long"`
	SellerDeliveryTimeRecent *int64   `json:"seller_delivery_time_recent"`
	SellerDeliveryTimeLong   *int64   `json:"seller_delivery_time_long"`
	SellerSteamLevelMin      *int64   `json:"seller_steam_level_min"`
	SellerSteamLevelMax      *int64   `json:"seller_steam_level_max"`

	PublishedAt       *string `json:"published_at"`
	IsCommodity       bool    `json:"is_commodity"`
	PriceIsUnreliable bool    `json:"price_is_unreliable"`
}

// AuctionUpdate is one append-only row per bid-change event. The auction
// identifier equals the item identifier in this marketplace; ItemID and
// MarketName are best-effort linkage and stay null for never-seen items.
type AuctionUpdate struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	AuctionID  int64     `json:"auction_id" gorm:"index;not null"`
	ItemID     *int64    `json:"item_id" gorm:"index"`
	MarketName *string   `json:"market_name"`
	UpdateTime time.Time `json:"update_time" gorm:"index;autoCreateTime"`

	HighestBid            *int64   `json:"highest_bid"`
	HighestBidder         *int64   `json:"highest_bidder"`
	NumberOfBids          *int64   `json:"number_of_bids"`
	AboveRecommendedPrice *float64 `json:"above_recommended_price"`
	EndsAt                *int64   `json:"ends_at"`
}

// Bidder is upserted on every bid observation. TotalSpent accumulates the
// highest bid at each update, an approximation rather than a spend ledger.
type Bidder struct {
	BidderID   int64     `json:"bidder_id" gorm:"primaryKey;autoIncrement:false"`
	FirstSeen  time.Time `json:"first_seen" gorm:"autoCreateTime"`
	LastSeen   time.Time `json:"last_seen"`
	TotalBids  int64     `json:"total_bids" gorm:"default:0"`
	HighestBid int64     `json:"highest_bid" gorm:"default:0"`
	TotalSpent int64     `json:"total_spent" gorm:"default:0"`
}

// Sale type values assigned when an item leaves the feed.
const (
	SaleAuctionSold    = "auction_sold"
	SaleAuctionExpired = "auction_expired"
	SaleDelisted       = "delisted"
)

// DeletedItem records one removal event with its classified outcome.
type DeletedItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ItemID    int64     `json:"item_id" gorm:"index;not null"`
	DeletedAt time.Time `json:"deleted_at" gorm:"index;autoCreateTime"`

	SaleType       string `json:"sale_type" gorm:"index"`
	HadBids        bool   `json:"had_bids"`
	FinalBidCount  int64  `json:"final_bid_count"`
	FinalBidAmount *int64 `json:"final_bid_amount"`
	FinalBidder    *int64 `json:"final_bidder"`

	WasAuction    bool   `json:"was_auction"`
	OriginalPrice *int64 `json:"original_price"`
}
