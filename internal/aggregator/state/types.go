package state

import "github.com/R3E-Network/service_layer/internal/aggregator/event"

// VlbEntry is one row of a per-game volume leaderboard.
type VlbEntry struct {
	User   event.Public `json:"user"`
	Volume float32      `json:"volume"`
}

// Comment is one posted comment on an asset.
type Comment struct {
	Index     uint64       `json:"index"`
	User      event.Public `json:"user"`
	Timestamp uint64       `json:"timestamp"`
	Text      string       `json:"text"`
}

// CommentInfo is a page of comments plus the asset's total comment count.
type CommentInfo struct {
	Total    int       `json:"total"`
	Comments []Comment `json:"comments"`
}

// BurnInfo is a receipt proving a token burn happened.
type BurnInfo struct {
	Signature event.Signature `json:"signature"`
	Timestamp uint64          `json:"timestamp"`
}

// DepositInfo is a receipt proving a deposit happened.
type DepositInfo struct {
	Signature event.Signature `json:"signature"`
	Timestamp uint64          `json:"timestamp"`
}

// WithdrawInfo is a receipt proving a withdrawal happened.
type WithdrawInfo struct {
	Signature         event.Signature `json:"signature"`
	Timestamp         uint64          `json:"timestamp"`
	WithdrawAuthority event.Public    `json:"withdraw_authority"`
}

// PnlEntry is one row of a per-game PnL leaderboard.
type PnlEntry struct {
	User     event.Public `json:"user"`
	InUSD    float32      `json:"in_usd"`
	OutUSD   float32      `json:"out_usd"`
	Position float32      `json:"position"`
}

// PnlResponse answers a single-user PnL query.
type PnlResponse struct {
	InUSD    float32 `json:"in_usd"`
	OutUSD   float32 `json:"out_usd"`
	Position float32 `json:"position"`
	Price    float32 `json:"price"`
}

// IvyInfo summarizes the World (Ivy/USDC) market.
type IvyInfo struct {
	CreateTimestamp      uint64  `json:"create_timestamp"`
	IvyInitialLiquidity  float32 `json:"ivy_initial_liquidity"`
	GameInitialLiquidity float32 `json:"game_initial_liquidity"`
	IvyPrice             float32 `json:"ivy_price"`
	IvyMktCap            float32 `json:"ivy_mkt_cap"`
	IvyChange24h         float32 `json:"ivy_change_24h"`
}

// GlobalInfo summarizes engine-wide totals for a landing-page view.
type GlobalInfo struct {
	GamesListed    uint64  `json:"games_listed"`
	TVL            float32 `json:"tvl"`
	Volume24h      float32 `json:"volume_24h"`
	FeaturedAssets []Asset `json:"featured_assets"`
}
