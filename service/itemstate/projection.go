package itemstate

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapItemView/service/comm"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

// 派生投影全部是 (实体, 时钟) 的纯函数，每次读取或 tick 重算，不落地存储

// Phase 拍卖生命周期阶段
// locallyResulted 是编排器在确认事件到达前先行置位的本地标记
// cancelled 维持取消后的终态 (实体已被清空)
func Phase(a *types.Auction, now int64, locallyResulted bool, cancelled bool) types.AuctionPhase {
	if a == nil {
		if cancelled {
			return types.PhaseCancelled
		}
		return types.PhaseNoAuction
	}
	if a.Resulted || locallyResulted {
		return types.PhaseResulted
	}
	if now >= a.EndTime {
		return types.PhaseEndedUnresulted
	}
	if now >= a.StartTime {
		return types.PhaseActive
	}
	return types.PhaseScheduled
}

// ActiveOffers 过滤掉已过期的报价；底层存储不动，删除只由取消/接受事件驱动
func ActiveOffers(offers []types.Offer, now int64) []types.Offer {
	active := make([]types.Offer, 0, len(offers))
	for _, o := range offers {
		if o.Deadline > now {
			active = append(active, o)
		}
	}
	return active
}

// View 构建暴露给渲染层的只读合并视图
func (s *State) View(now time.Time) types.ItemView {
	nowSec := now.Unix()

	s.mu.RLock()
	defer s.mu.RUnlock()

	view := types.ItemView{
		Identity:     s.identity,
		Owner:        s.owner,
		OwnerProfile: s.ownerProfile,
		TokenKind:    s.tokenKind,
		HolderInfo:   s.holderInfo,
		Collection:   s.collection,
		Metadata:     s.metadata,
		Views:        s.views,
		ActiveOffers: ActiveOffers(s.offers, nowSec),
		TradeHistory: append([]types.TradeHistoryEntry(nil), s.trades...),
		Approvals: map[types.Spender]types.ApprovalState{
			types.SpenderMarketplace: s.approvals[types.SpenderMarketplace],
			types.SpenderAuction:     s.approvals[types.SpenderAuction],
		},
		MinBidIncrement: s.minBidIncrement,
		Now:             nowSec,
	}

	if s.listing != nil {
		l := *s.listing
		view.Listing = &l
	}
	if s.auction != nil {
		a := *s.auction
		view.Auction = &a
	}
	if s.bid != nil {
		b := *s.bid
		view.HighestBid = &b
	}

	phase := Phase(s.auction, nowSec, s.locallyResulted, s.cancelled)
	view.AuctionPhase = phase
	if s.auction != nil {
		view.AuctionStarted = nowSec >= s.auction.StartTime
		view.AuctionEnded = nowSec >= s.auction.EndTime || s.auction.Resulted || s.locallyResulted
		view.AuctionActive = view.AuctionStarted && !view.AuctionEnded
		switch phase {
		case types.PhaseScheduled:
			view.AuctionCountdown = s.auction.StartTime - nowSec
		case types.PhaseActive:
			view.AuctionCountdown = s.auction.EndTime - nowSec
		}
	}

	base := decimal.Zero
	if s.bid != nil {
		base = s.bid.Amount
	}
	view.MinNextBid = base.Add(s.minBidIncrement)

	if s.bid != nil {
		unlockAt := s.bid.LastBidTime + s.withdrawLockTime
		view.WithdrawUnlockAt = unlockAt
		view.CanWithdrawBid = strings.EqualFold(s.bid.Bidder, s.account) && unlockAt < nowSec

		// 旧界面固定按 20 分钟展示倒计时，与链上锁定期无关；差异被刻意保留
		if left := comm.LegacyWithdrawDisplayWindow - (nowSec - s.bid.LastBidTime); left > 0 {
			view.LegacyWithdrawCountdown = left
		}
	}

	return view
}
