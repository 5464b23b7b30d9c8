package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenKind Token 标准
const (
	TokenKind721  int64 = 721
	TokenKind1155 int64 = 1155
)

// Listing 挂单实体；同一 Item 同一时刻至多一个
// 价格为展示单位 (链上定点值在 delta 应用时按 10^18 换算，之后不再重新推导)
type Listing struct {
	Owner          string          `json:"owner"`
	Quantity       int64           `json:"quantity"`
	PricePerItem   decimal.Decimal `json:"price_per_item"`
	StartingTime   int64           `json:"starting_time"`
	AllowedAddress string          `json:"allowed_address,omitempty"` // 私售限制地址，可为空
}

// Offer 报价实体；按 creator 逻辑去重，每个 creator 每个 Item 至多一个有效报价
type Offer struct {
	Creator      string          `json:"creator"`
	PayToken     string          `json:"pay_token"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	Quantity     int64           `json:"quantity"`
	Deadline     int64           `json:"deadline"` // unix 秒
}

// Auction 拍卖实体；同一 Item 至多一个
type Auction struct {
	StartTime    int64           `json:"start_time"`
	EndTime      int64           `json:"end_time"`
	ReservePrice decimal.Decimal `json:"reserve_price"`
	Resulted     bool            `json:"resulted"`
	Winner       string          `json:"winner,omitempty"`
	WinningBid   *decimal.Decimal `json:"winning_bid,omitempty"`
}

// Bid 当前最高出价
type Bid struct {
	Bidder      string          `json:"bidder"`
	Amount      decimal.Decimal `json:"amount"`
	LastBidTime int64           `json:"last_bid_time"` // unix 秒
}

// TradeHistoryEntry 成交历史，仅追加
type TradeHistoryEntry struct {
	From     string          `json:"from"`
	To       string          `json:"to"`
	Price    decimal.Decimal `json:"price"`
	SaleDate time.Time       `json:"sale_date"`
}

// Spender 授权对象
type Spender string

const (
	SpenderMarketplace Spender = "marketplace"
	SpenderAuction     Spender = "auction"
)

// ApprovalState 针对某个 Spender 的授权状态机
type ApprovalState string

const (
	ApprovalUnapproved ApprovalState = "unapproved"
	ApprovalApproving  ApprovalState = "approving" // 本地交易在途的瞬态
	ApprovalApproved   ApprovalState = "approved"
)

// AuctionPhase 拍卖生命周期阶段，由 (Auction, 时钟, 本地 resulted 标记) 纯推导
type AuctionPhase string

const (
	PhaseNoAuction       AuctionPhase = "no_auction"
	PhaseScheduled       AuctionPhase = "scheduled"
	PhaseActive          AuctionPhase = "active"
	PhaseEndedUnresulted AuctionPhase = "ended_unresulted"
	PhaseResulted        AuctionPhase = "resulted"
	PhaseCancelled       AuctionPhase = "cancelled"
)

// CollectionMeta 集合元数据 (查询服务提供)
type CollectionMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	ImageURL    string `json:"image_url"`
}

// AccountProfile 账户资料 (查询服务提供)
type AccountProfile struct {
	Address  string `json:"address"`
	Alias    string `json:"alias"`
	ImageURL string `json:"image_url"`
}

// HolderInfo 1155 多持有人信息
type HolderInfo struct {
	Holders     int64 `json:"holders"`
	TotalSupply int64 `json:"total_supply"`
}

// ItemMetadata token URI 元数据
type ItemMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}
