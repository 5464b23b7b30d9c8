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

func TestInstallSnapshot(t *testing.T) {
	s := newTestState(t)
	gen := s.Generation()

	ok := s.InstallSnapshot(gen, Snapshot{
		Listing: &types.Listing{Owner: testOther, Quantity: 1, PricePerItem: decimal.NewFromInt(2)},
		Owner:   testOther,
		Offers: []types.Offer{
			{Creator: testAccount, PricePerItem: decimal.NewFromInt(1), Deadline: 9999},
		},
		MinBidIncrement:  decimal.RequireFromString("0.1"),
		WithdrawLockTime: 1200,
		Approvals:        map[types.Spender]bool{types.SpenderMarketplace: true},
	})
	require.True(t, ok)

	assert.NotNil(t, s.Listing())
	assert.Equal(t, testOther, s.Owner())
	assert.Len(t, s.Offers(), 1)
	assert.Equal(t, types.ApprovalApproved, s.Approval(types.SpenderMarketplace))
	assert.Equal(t, types.ApprovalUnapproved, s.Approval(types.SpenderAuction))
}

func TestInstallSnapshotStaleGeneration(t *testing.T) {
	s := newTestState(t)
	gen := s.Generation()

	newIdentity, err := types.NewItemIdentity(testCollection, "43")
	require.NoError(t, err)
	s.ResetIdentity(newIdentity)

	// 身份已切换，过期快照被整体丢弃
	ok := s.InstallSnapshot(gen, Snapshot{
		Listing: &types.Listing{Owner: testOther, Quantity: 1, PricePerItem: decimal.NewFromInt(2)},
	})
	assert.False(t, ok)
	assert.Nil(t, s.Listing())
}

func TestResetIdentityClearsState(t *testing.T) {
	s := newTestState(t)
	s.ApplyItemListed(listedEvent())
	s.InstallAuction(&types.Auction{StartTime: 100, EndTime: 200})
	s.ApplyBidPlaced(BidPlacedEvent{
		Nft: testCollection, TokenID: big.NewInt(42), Bidder: testOther, Amount: eth(2), BidTime: 150,
	})

	newIdentity, err := types.NewItemIdentity(testCollection, "43")
	require.NoError(t, err)
	gen := s.ResetIdentity(newIdentity)

	assert.Greater(t, gen, uint64(0))
	assert.Nil(t, s.Listing())
	assert.Nil(t, s.Auction())
	assert.Nil(t, s.HighestBid())
	assert.Empty(t, s.Owner())
	assert.Equal(t, newIdentity, s.Identity())

	// 旧身份的事件不再被接受
	s.ApplyItemListed(listedEvent())
	assert.Nil(t, s.Listing())
}

func TestSnapshotDoesNotClobberApproving(t *testing.T) {
	s := newTestState(t)
	s.BeginApproval(types.SpenderMarketplace)

	ok := s.InstallSnapshot(s.Generation(), Snapshot{
		Approvals: map[types.Spender]bool{types.SpenderMarketplace: false},
	})
	require.True(t, ok)

	// 快照说未授权，但本地交易在途：保持 Approving，等事件定论
	assert.Equal(t, types.ApprovalApproving, s.Approval(types.SpenderMarketplace))
}

func TestSnapshotThenEventMerge(t *testing.T) {
	s := newTestState(t)

	ok := s.InstallSnapshot(s.Generation(), Snapshot{
		Listing: &types.Listing{Owner: testOther, Quantity: 1, PricePerItem: decimal.NewFromInt(2)},
	})
	require.True(t, ok)
	require.NotNil(t, s.Listing())

	// 快照之后到达的取消事件胜出
	s.ApplyItemCanceled(ItemCanceledEvent{Owner: testOther, Nft: testCollection, TokenID: big.NewInt(42)})
	assert.Nil(t, s.Listing())
	assert.Nil(t, s.View(time.Now()).Listing)
}
