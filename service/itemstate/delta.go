package itemstate

import (
	"fmt"
	"strings"

	"github.com/ProjectsTask/EasySwapItemView/service/comm"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

// 每种事件一个确定性的幂等 delta；事件同步器与动作编排器共用同一组入口，
// 因此同一逻辑变更到达两次 (乐观 + 确认事件) 时，第二次不产生额外效果。
// 所有 delta 对"引用的实体尚不存在"的情况优雅空操作 (订阅可能建立于流中途)。

// ApplyItemListed 挂单创建：整体替换
func (s *State) ApplyItemListed(e ItemListedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	allowed := ""
	if e.IsPrivate && !strings.EqualFold(e.AllowedAddress, comm.ZeroAddress) {
		allowed = e.AllowedAddress
	}

	s.mu.Lock()
	s.listing = &types.Listing{
		Owner:          e.Owner,
		Quantity:       e.Quantity.Int64(),
		PricePerItem:   comm.ToDisplay(e.PricePerItem),
		StartingTime:   e.StartingTime.Int64(),
		AllowedAddress: allowed,
	}
	s.mu.Unlock()
	s.onChange()
}

// ApplyItemUpdated 挂单价格更新；挂单未知时空操作
func (s *State) ApplyItemUpdated(e ItemUpdatedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	if s.listing == nil {
		s.mu.Unlock()
		return
	}
	l := *s.listing
	l.PricePerItem = comm.ToDisplay(e.NewPrice)
	s.listing = &l
	s.mu.Unlock()
	s.onChange()
}

// ApplyItemCanceled 挂单取消：置空
func (s *State) ApplyItemCanceled(e ItemCanceledEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	s.listing = nil
	s.mu.Unlock()
	s.onChange()
}

// ApplyItemSold 成交：清挂单、换持有人、成交历史幂等追加一条
func (s *State) ApplyItemSold(e ItemSoldEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	price := comm.ToDisplay(e.Price)
	key := e.TxHash
	if key == "" {
		// 无交易哈希的退化键；足以挡住同一事件的重复投递
		key = fmt.Sprintf("%s|%s|%s", strings.ToLower(e.Seller), strings.ToLower(e.Buyer), price.String())
	}

	s.mu.Lock()
	s.listing = nil
	s.owner = e.Buyer
	if _, dup := s.seenSales[key]; !dup {
		s.seenSales[key] = struct{}{}
		s.trades = append(s.trades, types.TradeHistoryEntry{
			From:     e.Seller,
			To:       e.Buyer,
			Price:    price,
			SaleDate: e.SaleTime,
		})
	}
	s.mu.Unlock()
	s.onChange()
}

// ApplyOfferCreated 报价创建：同 creator 的旧报价被替换 (账本侧每人至多一个)
func (s *State) ApplyOfferCreated(e OfferCreatedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	offer := types.Offer{
		Creator:      e.Creator,
		PayToken:     e.PayToken,
		PricePerItem: comm.ToDisplay(e.PricePerItem),
		Quantity:     e.Quantity.Int64(),
		Deadline:     e.Deadline.Int64(),
	}

	s.mu.Lock()
	kept := s.offers[:0]
	for _, o := range s.offers {
		if !strings.EqualFold(o.Creator, e.Creator) {
			kept = append(kept, o)
		}
	}
	s.offers = append(kept, offer)
	s.mu.Unlock()
	s.onChange()
}

// ApplyOfferCanceled 报价取消：按 creator 移除
func (s *State) ApplyOfferCanceled(e OfferCanceledEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	kept := s.offers[:0]
	for _, o := range s.offers {
		if !strings.EqualFold(o.Creator, e.Creator) {
			kept = append(kept, o)
		}
	}
	s.offers = kept
	s.mu.Unlock()
	s.onChange()
}

// MatchesAuctionCreated AuctionCreated 事件本身不带参数，调用方匹配成功后回查快照源
func (s *State) MatchesAuctionCreated(e AuctionCreatedEvent) bool {
	return s.identityMatches(e.Nft, e.TokenID)
}

// InstallAuction 安装回查得到的拍卖实体，开启新一轮生命周期
// endTime 为 0 视为不存在 (快照源对无拍卖的 Item 返回零值结构)
func (s *State) InstallAuction(a *types.Auction) {
	s.mu.Lock()
	if a != nil && a.EndTime == 0 {
		a = nil
	}
	s.auction = a
	if a != nil {
		s.cancelled = false
		s.locallyResulted = false
	}
	s.mu.Unlock()
	s.onChange()
}

// ApplyAuctionStartTimeUpdated 拍卖开始时间单字段替换；拍卖未知时空操作
func (s *State) ApplyAuctionStartTimeUpdated(e AuctionStartTimeUpdatedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	if s.auction == nil {
		s.mu.Unlock()
		return
	}
	a := *s.auction
	a.StartTime = e.StartTime.Int64()
	s.auction = &a
	s.mu.Unlock()
	s.onChange()
}

// ApplyAuctionEndTimeUpdated 拍卖结束时间单字段替换
func (s *State) ApplyAuctionEndTimeUpdated(e AuctionEndTimeUpdatedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	if s.auction == nil {
		s.mu.Unlock()
		return
	}
	a := *s.auction
	a.EndTime = e.EndTime.Int64()
	s.auction = &a
	s.mu.Unlock()
	s.onChange()
}

// ApplyAuctionReservePriceUpdated 保留价单字段替换
func (s *State) ApplyAuctionReservePriceUpdated(e AuctionReservePriceUpdatedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	if s.auction == nil {
		s.mu.Unlock()
		return
	}
	a := *s.auction
	a.ReservePrice = comm.ToDisplay(e.ReservePrice)
	s.auction = &a
	s.mu.Unlock()
	s.onChange()
}

// ApplyMinBidIncrementUpdated 全局参数，不过滤身份
func (s *State) ApplyMinBidIncrementUpdated(e MinBidIncrementUpdatedEvent) {
	s.mu.Lock()
	s.minBidIncrement = comm.ToDisplay(e.Value)
	s.mu.Unlock()
	s.onChange()
}

// ApplyWithdrawalLockTimeUpdated 全局参数 (秒)，不过滤身份
func (s *State) ApplyWithdrawalLockTimeUpdated(e WithdrawalLockTimeUpdatedEvent) {
	s.mu.Lock()
	s.withdrawLockTime = e.Value.Int64()
	s.mu.Unlock()
	s.onChange()
}

// ApplyBidPlaced 新的最高出价：整体替换
func (s *State) ApplyBidPlaced(e BidPlacedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	s.bid = &types.Bid{
		Bidder:      e.Bidder,
		Amount:      comm.ToDisplay(e.Amount),
		LastBidTime: e.BidTime,
	}
	s.mu.Unlock()
	s.onChange()
}

// ApplyBidWithdrawn 出价撤回：清空最高出价
func (s *State) ApplyBidWithdrawn(e BidWithdrawnEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	s.bid = nil
	s.mu.Unlock()
	s.onChange()
}

// ApplyAuctionCancelled 拍卖取消：实体整体清空，阶段进入终态 Cancelled
// Resulted 为终态，结算之后到达的取消事件不再生效
func (s *State) ApplyAuctionCancelled(e AuctionCancelledEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	if (s.auction != nil && s.auction.Resulted) || s.locallyResulted {
		s.mu.Unlock()
		return
	}
	s.auction = nil
	s.bid = nil
	s.cancelled = true
	s.locallyResulted = false
	s.mu.Unlock()
	s.onChange()
}

// ApplyAuctionResulted 拍卖结算：终态，携带 winner 与成交出价
func (s *State) ApplyAuctionResulted(e AuctionResultedEvent) {
	if !s.identityMatches(e.Nft, e.TokenID) {
		return
	}

	s.mu.Lock()
	if s.auction == nil {
		s.mu.Unlock()
		return
	}
	a := *s.auction
	a.Resulted = true
	a.Winner = e.Winner
	winning := comm.ToDisplay(e.WinningBid)
	a.WinningBid = &winning
	s.auction = &a
	s.mu.Unlock()
	s.onChange()
}

// SetLocallyResulted 编排器提交 resultAuction 成功后先行置位，确认事件随后补全 winner
func (s *State) SetLocallyResulted() {
	s.mu.Lock()
	s.locallyResulted = true
	s.mu.Unlock()
	s.onChange()
}

// BeginApproval 授权动作开始：仅 Unapproved -> Approving
func (s *State) BeginApproval(spender types.Spender) {
	s.mu.Lock()
	if s.approvals[spender] == types.ApprovalUnapproved {
		s.approvals[spender] = types.ApprovalApproving
	}
	s.mu.Unlock()
	s.onChange()
}

// FinishApproval 授权动作结束；若事件路径已把状态推到权威值，这里是空操作
func (s *State) FinishApproval(spender types.Spender, ok bool) {
	s.mu.Lock()
	if s.approvals[spender] == types.ApprovalApproving {
		if ok {
			s.approvals[spender] = types.ApprovalApproved
		} else {
			s.approvals[spender] = types.ApprovalUnapproved
		}
	}
	s.mu.Unlock()
	s.onChange()
}

// ApplyApprovalForAll 授权事件具有权威性：无条件覆盖本地 (含在途的 Approving)
// 其他会话可能以同一持有人身份授予或收回授权
func (s *State) ApplyApprovalForAll(e ApprovalForAllEvent) {
	s.mu.Lock()
	if !strings.EqualFold(e.Owner, s.account) {
		s.mu.Unlock()
		return
	}

	var target types.Spender
	found := false
	for spender, addr := range s.spenderAddrs {
		if strings.EqualFold(addr, e.Operator) {
			target = spender
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return
	}

	if e.Approved {
		s.approvals[target] = types.ApprovalApproved
	} else {
		s.approvals[target] = types.ApprovalUnapproved
	}
	s.mu.Unlock()
	s.onChange()
}

func (s *State) identityMatches(contractAddr string, tokenID interface{ String() string }) bool {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()
	if tokenID == nil {
		return false
	}
	return identity.Matches(contractAddr, tokenID.String())
}
