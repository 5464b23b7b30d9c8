package itemstate

import (
	"math/big"
	"time"
)

// 链上事件的结构化载荷；金额保持链上定点整数，换算发生在 delta 应用时刻
// 同一结构同时服务于事件同步器与动作编排器的乐观更新 (双路径共用一套 delta)

type ItemListedEvent struct {
	Owner          string
	Nft            string
	TokenID        *big.Int
	Quantity       *big.Int
	PricePerItem   *big.Int
	StartingTime   *big.Int
	IsPrivate      bool
	AllowedAddress string
}

type ItemUpdatedEvent struct {
	Owner    string
	Nft      string
	TokenID  *big.Int
	NewPrice *big.Int
}

type ItemCanceledEvent struct {
	Owner   string
	Nft     string
	TokenID *big.Int
}

type ItemSoldEvent struct {
	Seller  string
	Buyer   string
	Nft     string
	TokenID *big.Int
	Price   *big.Int
	// TxHash 用于成交去重：同一笔成交可能经乐观路径与事件路径各到达一次
	TxHash   string
	SaleTime time.Time
}

type OfferCreatedEvent struct {
	Creator      string
	Nft          string
	TokenID      *big.Int
	PayToken     string
	Quantity     *big.Int
	PricePerItem *big.Int
	Deadline     *big.Int
}

type OfferCanceledEvent struct {
	Creator string
	Nft     string
	TokenID *big.Int
}

// AuctionCreatedEvent 不携带拍卖参数，匹配后由调用方回查快照源
type AuctionCreatedEvent struct {
	Nft     string
	TokenID *big.Int
}

type AuctionStartTimeUpdatedEvent struct {
	Nft       string
	TokenID   *big.Int
	StartTime *big.Int
}

type AuctionEndTimeUpdatedEvent struct {
	Nft     string
	TokenID *big.Int
	EndTime *big.Int
}

type AuctionReservePriceUpdatedEvent struct {
	Nft          string
	TokenID      *big.Int
	ReservePrice *big.Int
}

// 全局参数事件，不经过身份过滤
type MinBidIncrementUpdatedEvent struct {
	Value *big.Int
}

type WithdrawalLockTimeUpdatedEvent struct {
	Value *big.Int
}

type BidPlacedEvent struct {
	Nft     string
	TokenID *big.Int
	Bidder  string
	Amount  *big.Int
	BidTime int64 // unix 秒，事件路径取区块时间，乐观路径取确认时刻
}

type BidWithdrawnEvent struct {
	Nft     string
	TokenID *big.Int
	Bidder  string
}

type AuctionCancelledEvent struct {
	Nft     string
	TokenID *big.Int
}

type AuctionResultedEvent struct {
	Nft        string
	TokenID    *big.Int
	Winner     string
	WinningBid *big.Int
}

// ApprovalForAllEvent 仅当 owner 为当前连接账户时生效，事件结果具有权威性
type ApprovalForAllEvent struct {
	Owner    string
	Operator string
	Approved bool
}
