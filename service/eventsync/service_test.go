package eventsync

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapItemView/chain/marketclient"
	"github.com/ProjectsTask/EasySwapItemView/service/config"
	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/service/snapshotloader"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

const (
	testCollection  = "0x4675C7e5BaAFBFFbca748158bEcBA61ef3b0a263"
	testAccount     = "0x2222222222222222222222222222222222222222"
	testOther       = "0x5555555555555555555555555555555555555555"
	testMarketplace = "0x3333333333333333333333333333333333333333"
	testAuctionAddr = "0x4444444444444444444444444444444444444444"
)

func newTestService(t *testing.T, queryBaseUrl string) (*Service, *itemstate.State) {
	t.Helper()

	identity, err := types.NewItemIdentity(testCollection, "42")
	require.NoError(t, err)
	state := itemstate.New(identity, testAccount, map[types.Spender]string{
		types.SpenderMarketplace: testMarketplace,
		types.SpenderAuction:     testAuctionAddr,
	}, nil)

	var loader *snapshotloader.Loader
	if queryBaseUrl != "" {
		cli := snapshotloader.NewClient(config.QueryCfg{BaseUrl: queryBaseUrl, TimeoutSeconds: 2})
		loader = snapshotloader.New(cli, nil, nil, testAccount)
	}

	svc, err := New(context.Background(), state, loader, nil, "sepolia",
		testMarketplace, testAuctionAddr, testCollection, testAccount)
	require.NoError(t, err)
	return svc, state
}

func addressTopic(addr string) common.Hash {
	return common.BytesToHash(common.LeftPadBytes(common.HexToAddress(addr).Bytes(), 32))
}

func bigTopic(v *big.Int) common.Hash {
	return common.BigToHash(v)
}

func packEventData(t *testing.T, abiJSON, event string, args ...interface{}) []byte {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	data, err := parsed.Events[event].Inputs.NonIndexed().Pack(args...)
	require.NoError(t, err)
	return data
}

func eventID(t *testing.T, abiJSON, event string) common.Hash {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	return parsed.Events[event].ID
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestDispatchItemListed(t *testing.T) {
	svc, state := newTestService(t, "")

	log := ethereumTypes.Log{
		Address: common.HexToAddress(testMarketplace),
		Topics: []common.Hash{
			eventID(t, marketclient.MarketplaceABIJSON, "ItemListed"),
			addressTopic(testOther),
			addressTopic(testCollection),
		},
		Data: packEventData(t, marketclient.MarketplaceABIJSON, "ItemListed",
			big.NewInt(42), big.NewInt(1), eth(2), big.NewInt(1000), false, common.Address{}),
	}
	svc.dispatch(context.Background(), log)

	listing := state.Listing()
	require.NotNil(t, listing)
	assert.Equal(t, common.HexToAddress(testOther).Hex(), listing.Owner)
	assert.True(t, listing.PricePerItem.Equal(decimal.NewFromInt(2)))
}

func TestDispatchIgnoresOtherToken(t *testing.T) {
	svc, state := newTestService(t, "")

	// 同一事件签名，但 nft topic 指向别的集合
	log := ethereumTypes.Log{
		Address: common.HexToAddress(testMarketplace),
		Topics: []common.Hash{
			eventID(t, marketclient.MarketplaceABIJSON, "ItemListed"),
			addressTopic(testOther),
			addressTopic(testOther),
		},
		Data: packEventData(t, marketclient.MarketplaceABIJSON, "ItemListed",
			big.NewInt(42), big.NewInt(1), eth(2), big.NewInt(1000), false, common.Address{}),
	}
	svc.dispatch(context.Background(), log)
	assert.Nil(t, state.Listing())

	// token id 不同同样被忽略
	log.Topics[2] = addressTopic(testCollection)
	log.Data = packEventData(t, marketclient.MarketplaceABIJSON, "ItemListed",
		big.NewInt(7), big.NewInt(1), eth(2), big.NewInt(1000), false, common.Address{})
	svc.dispatch(context.Background(), log)
	assert.Nil(t, state.Listing())
}

func TestDispatchIgnoresUnknownContract(t *testing.T) {
	svc, state := newTestService(t, "")

	log := ethereumTypes.Log{
		Address: common.HexToAddress(testOther),
		Topics: []common.Hash{
			eventID(t, marketclient.MarketplaceABIJSON, "ItemListed"),
			addressTopic(testOther),
			addressTopic(testCollection),
		},
		Data: packEventData(t, marketclient.MarketplaceABIJSON, "ItemListed",
			big.NewInt(42), big.NewInt(1), eth(2), big.NewInt(1000), false, common.Address{}),
	}
	svc.dispatch(context.Background(), log)
	assert.Nil(t, state.Listing())
}

func TestDispatchBidPlaced(t *testing.T) {
	svc, state := newTestService(t, "")

	log := ethereumTypes.Log{
		Address: common.HexToAddress(testAuctionAddr),
		Topics: []common.Hash{
			eventID(t, marketclient.AuctionABIJSON, "BidPlaced"),
			addressTopic(testCollection),
			bigTopic(big.NewInt(42)),
			addressTopic(testOther),
		},
		Data: packEventData(t, marketclient.AuctionABIJSON, "BidPlaced", eth(3)),
	}
	svc.dispatch(context.Background(), log)

	bid := state.HighestBid()
	require.NotNil(t, bid)
	assert.Equal(t, common.HexToAddress(testOther).Hex(), bid.Bidder)
	assert.True(t, bid.Amount.Equal(decimal.NewFromInt(3)))
}

func TestDispatchGlobalParamUpdates(t *testing.T) {
	svc, state := newTestService(t, "")

	log := ethereumTypes.Log{
		Address: common.HexToAddress(testAuctionAddr),
		Topics:  []common.Hash{eventID(t, marketclient.AuctionABIJSON, "UpdateMinBidIncrement")},
		Data:    packEventData(t, marketclient.AuctionABIJSON, "UpdateMinBidIncrement", eth(1)),
	}
	svc.dispatch(context.Background(), log)
	assert.True(t, state.MinBidIncrement().Equal(decimal.NewFromInt(1)))

	log = ethereumTypes.Log{
		Address: common.HexToAddress(testAuctionAddr),
		Topics:  []common.Hash{eventID(t, marketclient.AuctionABIJSON, "UpdateBidWithdrawalLockTime")},
		Data:    packEventData(t, marketclient.AuctionABIJSON, "UpdateBidWithdrawalLockTime", big.NewInt(1800)),
	}
	svc.dispatch(context.Background(), log)
	assert.Equal(t, int64(1800), state.WithdrawLockTime())
}

func TestDispatchApprovalForAll(t *testing.T) {
	svc, state := newTestService(t, "")

	log := ethereumTypes.Log{
		Address: common.HexToAddress(testCollection),
		Topics: []common.Hash{
			eventID(t, marketclient.TokenABIJSON, "ApprovalForAll"),
			addressTopic(testAccount),
			addressTopic(testMarketplace),
		},
		Data: packEventData(t, marketclient.TokenABIJSON, "ApprovalForAll", true),
	}
	svc.dispatch(context.Background(), log)
	assert.Equal(t, types.ApprovalApproved, state.Approval(types.SpenderMarketplace))
}

func TestDispatchAuctionCreatedRefetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"start_time":100,"end_time":200,"reserve_price":"1"}}`))
	}))
	defer srv.Close()

	svc, state := newTestService(t, srv.URL)

	log := ethereumTypes.Log{
		Address: common.HexToAddress(testAuctionAddr),
		Topics: []common.Hash{
			eventID(t, marketclient.AuctionABIJSON, "AuctionCreated"),
			addressTopic(testCollection),
			bigTopic(big.NewInt(42)),
		},
	}
	svc.dispatch(context.Background(), log)

	auction := state.Auction()
	require.NotNil(t, auction)
	assert.Equal(t, int64(200), auction.EndTime)
	assert.True(t, auction.ReservePrice.Equal(decimal.NewFromInt(1)))
}
