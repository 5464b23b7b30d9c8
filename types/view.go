package types

import "github.com/shopspring/decimal"

// ItemView 暴露给渲染层的只读合并视图: 全部实体 + 派生投影
type ItemView struct {
	Identity ItemIdentity `json:"identity"`

	Owner        string          `json:"owner,omitempty"`
	OwnerProfile *AccountProfile `json:"owner_profile,omitempty"`
	TokenKind    int64           `json:"token_kind,omitempty"`
	HolderInfo   *HolderInfo     `json:"holder_info,omitempty"`
	Collection   *CollectionMeta `json:"collection,omitempty"`
	Metadata     *ItemMetadata   `json:"metadata,omitempty"`
	Views        int64           `json:"views"`

	Listing      *Listing            `json:"listing,omitempty"`
	ActiveOffers []Offer             `json:"active_offers"`
	Auction      *Auction            `json:"auction,omitempty"`
	HighestBid   *Bid                `json:"highest_bid,omitempty"`
	TradeHistory []TradeHistoryEntry `json:"trade_history"`

	Approvals map[Spender]ApprovalState `json:"approvals"`

	// 拍卖派生投影
	AuctionPhase   AuctionPhase `json:"auction_phase"`
	AuctionStarted bool         `json:"auction_started"`
	AuctionEnded   bool         `json:"auction_ended"`
	AuctionActive  bool         `json:"auction_active"`
	// 当前阶段对应的倒计时 (秒): Scheduled 时到开拍、Active 时到结束；其余为 0
	AuctionCountdown int64 `json:"auction_countdown"`

	// 出价相关投影
	MinBidIncrement decimal.Decimal  `json:"min_bid_increment"`
	MinNextBid      decimal.Decimal  `json:"min_next_bid"`
	CanWithdrawBid  bool             `json:"can_withdraw_bid"`
	// WithdrawUnlockAt 按链上可配置的锁定期推导，是 can_withdraw_bid 的权威依据
	WithdrawUnlockAt int64 `json:"withdraw_unlock_at,omitempty"`
	// LegacyWithdrawCountdown 沿用旧版界面固定 20 分钟的展示倒计时 (秒)；
	// 与链上锁定期无关，与 withdraw_unlock_at 可能不一致，保留以暴露该差异
	LegacyWithdrawCountdown int64 `json:"legacy_withdraw_countdown"`

	Now int64 `json:"now"` // 本视图对应的时钟快照 (unix 秒)
}
