package itemstate

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapItemView/types"
)

const (
	testCollection  = "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263"
	testAccount     = "0x2222222222222222222222222222222222222222"
	testOther       = "0x5555555555555555555555555555555555555555"
	testMarketplace = "0x3333333333333333333333333333333333333333"
	testAuction     = "0x4444444444444444444444444444444444444444"
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func newTestState(t *testing.T) *State {
	t.Helper()
	identity, err := types.NewItemIdentity(testCollection, "42")
	require.NoError(t, err)
	return New(identity, testAccount, map[types.Spender]string{
		types.SpenderMarketplace: testMarketplace,
		types.SpenderAuction:     testAuction,
	}, nil)
}

func listedEvent() ItemListedEvent {
	return ItemListedEvent{
		Owner:        testOther,
		Nft:          testCollection,
		TokenID:      big.NewInt(42),
		Quantity:     big.NewInt(1),
		PricePerItem: eth(2),
		StartingTime: big.NewInt(1000),
	}
}

func TestApplyItemListed(t *testing.T) {
	s := newTestState(t)

	s.ApplyItemListed(listedEvent())
	listing := s.Listing()
	require.NotNil(t, listing)
	assert.Equal(t, testOther, listing.Owner)
	assert.True(t, listing.PricePerItem.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, int64(1), listing.Quantity)

	// 第二次挂单整体替换
	e := listedEvent()
	e.PricePerItem = eth(3)
	s.ApplyItemListed(e)
	listing = s.Listing()
	require.NotNil(t, listing)
	assert.True(t, listing.PricePerItem.Equal(decimal.NewFromInt(3)))
}

func TestApplyItemListedPrivate(t *testing.T) {
	s := newTestState(t)

	e := listedEvent()
	e.IsPrivate = true
	e.AllowedAddress = testAccount
	s.ApplyItemListed(e)
	require.NotNil(t, s.Listing())
	assert.Equal(t, testAccount, s.Listing().AllowedAddress)

	// 非私售时 allowed address 不保留
	e = listedEvent()
	e.IsPrivate = false
	e.AllowedAddress = testAccount
	s.ApplyItemListed(e)
	assert.Empty(t, s.Listing().AllowedAddress)

	// 私售但地址为零值同样不保留
	e = listedEvent()
	e.IsPrivate = true
	e.AllowedAddress = "0x0000000000000000000000000000000000000000"
	s.ApplyItemListed(e)
	assert.Empty(t, s.Listing().AllowedAddress)
}

func TestApplyItemListedIdentityIsolation(t *testing.T) {
	s := newTestState(t)

	e := listedEvent()
	e.TokenID = big.NewInt(7)
	s.ApplyItemListed(e)
	assert.Nil(t, s.Listing())

	e = listedEvent()
	e.Nft = testOther
	s.ApplyItemListed(e)
	assert.Nil(t, s.Listing())

	// 地址大小写不同仍然匹配
	e = listedEvent()
	e.Nft = "0x4675c7e5baafbffbca748158becba61ef3b0a263"
	s.ApplyItemListed(e)
	assert.NotNil(t, s.Listing())
}

func TestApplyItemUpdated(t *testing.T) {
	s := newTestState(t)

	// 挂单未知时空操作
	s.ApplyItemUpdated(ItemUpdatedEvent{
		Owner: testOther, Nft: testCollection, TokenID: big.NewInt(42), NewPrice: eth(5),
	})
	assert.Nil(t, s.Listing())

	s.ApplyItemListed(listedEvent())
	s.ApplyItemUpdated(ItemUpdatedEvent{
		Owner: testOther, Nft: testCollection, TokenID: big.NewInt(42), NewPrice: eth(5),
	})
	require.NotNil(t, s.Listing())
	assert.True(t, s.Listing().PricePerItem.Equal(decimal.NewFromInt(5)))
	// 其余字段不变
	assert.Equal(t, testOther, s.Listing().Owner)
}

func TestApplyItemCanceled(t *testing.T) {
	s := newTestState(t)
	s.ApplyItemListed(listedEvent())

	cancel := ItemCanceledEvent{Owner: testOther, Nft: testCollection, TokenID: big.NewInt(42)}
	s.ApplyItemCanceled(cancel)
	assert.Nil(t, s.Listing())

	// 重复投递无额外效果
	s.ApplyItemCanceled(cancel)
	assert.Nil(t, s.Listing())
}

func TestApplyItemSold(t *testing.T) {
	s := newTestState(t)
	s.ApplyItemListed(listedEvent())

	sold := ItemSoldEvent{
		Seller:   testOther,
		Buyer:    testAccount,
		Nft:      testCollection,
		TokenID:  big.NewInt(42),
		Price:    eth(2),
		TxHash:   "0xabc",
		SaleTime: time.Unix(5000, 0),
	}
	s.ApplyItemSold(sold)

	assert.Nil(t, s.Listing())
	assert.Equal(t, testAccount, s.Owner())

	view := s.View(time.Unix(5001, 0))
	require.Len(t, view.TradeHistory, 1)
	assert.Equal(t, testOther, view.TradeHistory[0].From)
	assert.Equal(t, testAccount, view.TradeHistory[0].To)

	// 同一笔成交两条路径各投递一次：历史仍只有一条
	s.ApplyItemSold(sold)
	assert.Len(t, s.View(time.Unix(5001, 0)).TradeHistory, 1)

	// 不同交易哈希是另一笔成交
	sold.TxHash = "0xdef"
	s.ApplyItemSold(sold)
	assert.Len(t, s.View(time.Unix(5001, 0)).TradeHistory, 2)
}

func TestApplyItemSoldFallbackKey(t *testing.T) {
	s := newTestState(t)

	sold := ItemSoldEvent{
		Seller:  testOther,
		Buyer:   testAccount,
		Nft:     testCollection,
		TokenID: big.NewInt(42),
		Price:   eth(1),
	}
	s.ApplyItemSold(sold)
	s.ApplyItemSold(sold)
	assert.Len(t, s.View(time.Now()).TradeHistory, 1)
}

func TestApplyOfferCreated(t *testing.T) {
	s := newTestState(t)

	offer := func(creator string, price *big.Int) OfferCreatedEvent {
		return OfferCreatedEvent{
			Creator:      creator,
			Nft:          testCollection,
			TokenID:      big.NewInt(42),
			PayToken:     testMarketplace,
			Quantity:     big.NewInt(1),
			PricePerItem: price,
			Deadline:     big.NewInt(9999),
		}
	}

	s.ApplyOfferCreated(offer(testAccount, eth(1)))
	s.ApplyOfferCreated(offer(testOther, eth(2)))
	assert.Len(t, s.Offers(), 2)

	// 同一 creator 再次报价是替换，不是追加；大小写不同视为同一人
	s.ApplyOfferCreated(offer("0x2222222222222222222222222222222222222222", eth(3)))
	offers := s.Offers()
	assert.Len(t, offers, 2)
	got := s.OfferOf(testAccount)
	require.NotNil(t, got)
	assert.True(t, got.PricePerItem.Equal(decimal.NewFromInt(3)))
}

func TestApplyOfferCanceled(t *testing.T) {
	s := newTestState(t)
	s.ApplyOfferCreated(OfferCreatedEvent{
		Creator: testAccount, Nft: testCollection, TokenID: big.NewInt(42),
		Quantity: big.NewInt(1), PricePerItem: eth(1), Deadline: big.NewInt(9999),
	})
	s.ApplyOfferCreated(OfferCreatedEvent{
		Creator: testOther, Nft: testCollection, TokenID: big.NewInt(42),
		Quantity: big.NewInt(1), PricePerItem: eth(2), Deadline: big.NewInt(9999),
	})

	cancel := OfferCanceledEvent{Creator: testAccount, Nft: testCollection, TokenID: big.NewInt(42)}
	s.ApplyOfferCanceled(cancel)
	assert.Len(t, s.Offers(), 1)
	assert.Nil(t, s.OfferOf(testAccount))
	assert.NotNil(t, s.OfferOf(testOther))

	s.ApplyOfferCanceled(cancel)
	assert.Len(t, s.Offers(), 1)
}

func TestInstallAuction(t *testing.T) {
	s := newTestState(t)

	// endTime 为零视为无拍卖
	s.InstallAuction(&types.Auction{})
	assert.Nil(t, s.Auction())

	s.InstallAuction(&types.Auction{StartTime: 100, EndTime: 200, ReservePrice: decimal.NewFromInt(1)})
	require.NotNil(t, s.Auction())
	assert.Equal(t, int64(200), s.Auction().EndTime)
}

func TestAuctionFieldUpdates(t *testing.T) {
	s := newTestState(t)

	// 拍卖未知时所有单字段更新空操作
	s.ApplyAuctionStartTimeUpdated(AuctionStartTimeUpdatedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), StartTime: big.NewInt(111),
	})
	assert.Nil(t, s.Auction())

	s.InstallAuction(&types.Auction{StartTime: 100, EndTime: 200, ReservePrice: decimal.NewFromInt(1)})

	s.ApplyAuctionStartTimeUpdated(AuctionStartTimeUpdatedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), StartTime: big.NewInt(111),
	})
	s.ApplyAuctionEndTimeUpdated(AuctionEndTimeUpdatedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), EndTime: big.NewInt(222),
	})
	s.ApplyAuctionReservePriceUpdated(AuctionReservePriceUpdatedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), ReservePrice: eth(5),
	})

	a := s.Auction()
	require.NotNil(t, a)
	assert.Equal(t, int64(111), a.StartTime)
	assert.Equal(t, int64(222), a.EndTime)
	assert.True(t, a.ReservePrice.Equal(decimal.NewFromInt(5)))
}

func TestGlobalParamUpdates(t *testing.T) {
	s := newTestState(t)

	s.ApplyMinBidIncrementUpdated(MinBidIncrementUpdatedEvent{Value: eth(1)})
	assert.True(t, s.MinBidIncrement().Equal(decimal.NewFromInt(1)))

	s.ApplyWithdrawalLockTimeUpdated(WithdrawalLockTimeUpdatedEvent{Value: big.NewInt(1800)})
	assert.Equal(t, int64(1800), s.WithdrawLockTime())
}

func TestApplyBidPlacedAndWithdrawn(t *testing.T) {
	s := newTestState(t)

	s.ApplyBidPlaced(BidPlacedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), Bidder: testOther, Amount: eth(2), BidTime: 1000,
	})
	bid := s.HighestBid()
	require.NotNil(t, bid)
	assert.Equal(t, testOther, bid.Bidder)
	assert.True(t, bid.Amount.Equal(decimal.NewFromInt(2)))

	// 新的最高出价整体替换
	s.ApplyBidPlaced(BidPlacedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), Bidder: testAccount, Amount: eth(3), BidTime: 1100,
	})
	bid = s.HighestBid()
	require.NotNil(t, bid)
	assert.Equal(t, testAccount, bid.Bidder)

	s.ApplyBidWithdrawn(BidWithdrawnEvent{
		Nft: testCollection, TokenID: big.NewInt(42), Bidder: testAccount,
	})
	assert.Nil(t, s.HighestBid())
}

func TestApplyAuctionCancelled(t *testing.T) {
	s := newTestState(t)
	s.InstallAuction(&types.Auction{StartTime: 100, EndTime: 200, ReservePrice: decimal.NewFromInt(1)})
	s.ApplyBidPlaced(BidPlacedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), Bidder: testOther, Amount: eth(2), BidTime: 150,
	})

	cancel := AuctionCancelledEvent{Nft: testCollection, TokenID: big.NewInt(42)}
	s.ApplyAuctionCancelled(cancel)

	assert.Nil(t, s.Auction())
	assert.Nil(t, s.HighestBid())
	assert.Equal(t, types.PhaseCancelled, s.View(time.Unix(150, 0)).AuctionPhase)

	s.ApplyAuctionCancelled(cancel)
	assert.Equal(t, types.PhaseCancelled, s.View(time.Unix(150, 0)).AuctionPhase)

	// 新一轮拍卖重置终态标记
	s.InstallAuction(&types.Auction{StartTime: 300, EndTime: 400, ReservePrice: decimal.NewFromInt(1)})
	assert.Equal(t, types.PhaseScheduled, s.View(time.Unix(250, 0)).AuctionPhase)
}

func TestApplyAuctionResulted(t *testing.T) {
	s := newTestState(t)

	resulted := AuctionResultedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), Winner: testOther, WinningBid: eth(7),
	}

	// 拍卖未知时空操作
	s.ApplyAuctionResulted(resulted)
	assert.Nil(t, s.Auction())

	s.InstallAuction(&types.Auction{StartTime: 100, EndTime: 200, ReservePrice: decimal.NewFromInt(1)})
	s.ApplyAuctionResulted(resulted)

	a := s.Auction()
	require.NotNil(t, a)
	assert.True(t, a.Resulted)
	assert.Equal(t, testOther, a.Winner)
	require.NotNil(t, a.WinningBid)
	assert.True(t, a.WinningBid.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, types.PhaseResulted, s.View(time.Unix(150, 0)).AuctionPhase)
}

func TestApplyAuctionCancelledAfterResulted(t *testing.T) {
	s := newTestState(t)
	s.InstallAuction(&types.Auction{StartTime: 100, EndTime: 200, ReservePrice: decimal.NewFromInt(1)})
	s.ApplyAuctionResulted(AuctionResultedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), Winner: testOther, WinningBid: eth(7),
	})

	// Resulted 为终态，迟到的取消事件不改变阶段
	s.ApplyAuctionCancelled(AuctionCancelledEvent{Nft: testCollection, TokenID: big.NewInt(42)})

	a := s.Auction()
	require.NotNil(t, a)
	assert.True(t, a.Resulted)
	assert.Equal(t, types.PhaseResulted, s.View(time.Unix(250, 0)).AuctionPhase)
}

func TestApplyAuctionCancelledAfterLocallyResulted(t *testing.T) {
	s := newTestState(t)
	s.InstallAuction(&types.Auction{StartTime: 100, EndTime: 200, ReservePrice: decimal.NewFromInt(1)})
	s.SetLocallyResulted()

	s.ApplyAuctionCancelled(AuctionCancelledEvent{Nft: testCollection, TokenID: big.NewInt(42)})

	require.NotNil(t, s.Auction())
	assert.Equal(t, types.PhaseResulted, s.View(time.Unix(250, 0)).AuctionPhase)
}

func TestApprovalStateMachine(t *testing.T) {
	s := newTestState(t)

	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderMarketplace))

	s.BeginApproval(types.SpenderMarketplace)
	assert.Equal(t, types.ApprovalApproving, s.Approval(types.SpenderMarketplace))
	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderAuction))

	s.FinishApproval(types.SpenderMarketplace, true)
	assert.Equal(t, types.ApprovalApproved, s.Approval(types.SpenderMarketplace))

	// 已授权后 Begin 不回退
	s.BeginApproval(types.SpenderMarketplace)
	assert.Equal(t, types.ApprovalApproved, s.Approval(types.SpenderMarketplace))

	s.BeginApproval(types.SpenderAuction)
	s.FinishApproval(types.SpenderAuction, false)
	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderAuction))
}

func TestApplyApprovalForAll(t *testing.T) {
	s := newTestState(t)

	// 事件结果权威：覆盖在途的 Approving
	s.BeginApproval(types.SpenderMarketplace)
	s.ApplyApprovalForAll(ApprovalForAllEvent{Owner: testAccount, Operator: testMarketplace, Approved: true})
	assert.Equal(t, types.ApprovalApproved, s.Approval(types.SpenderMarketplace))

	// 另一会话收回授权
	s.ApplyApprovalForAll(ApprovalForAllEvent{Owner: testAccount, Operator: testMarketplace, Approved: false})
	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderMarketplace))

	// 别人的授权事件与本账户无关
	s.ApplyApprovalForAll(ApprovalForAllEvent{Owner: testOther, Operator: testMarketplace, Approved: true})
	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderMarketplace))

	// 未知 operator 忽略
	s.ApplyApprovalForAll(ApprovalForAllEvent{Owner: testAccount, Operator: testOther, Approved: true})
	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderMarketplace))
	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderAuction))
}

func TestOnChangeNotification(t *testing.T) {
	identity, err := types.NewItemIdentity(testCollection, "42")
	require.NoError(t, err)

	var fired int
	s := New(identity, testAccount, nil, func() { fired++ })

	s.ApplyItemListed(listedEvent())
	assert.Equal(t, 1, fired)

	// 身份不匹配的事件不触发通知
	e := listedEvent()
	e.TokenID = big.NewInt(7)
	s.ApplyItemListed(e)
	assert.Equal(t, 1, fired)
}
