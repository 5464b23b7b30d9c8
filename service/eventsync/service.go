package eventsync

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapItemView/chain/chainclient"
	"github.com/ProjectsTask/EasySwapItemView/chain/marketclient"
	"github.com/ProjectsTask/EasySwapItemView/logger/xzap"
	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/service/snapshotloader"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

const (
	SleepInterval   = 10 // 轮询出错或无新块时的休眠间隔 (秒)
	SyncBlockPeriod = 10 // 每次同步的区块数量步长
)

// 多链区块延迟配置，防止重组带来的影响
var MultiChainMaxBlockDifference = map[string]uint64{
	"eth":      1,
	"optimism": 2,
	"sepolia":  1,
	"arbitrum": 2,
	"base":     2,
}

// Service 事件同步器
// 订阅市场、拍卖行、目标集合三个合约的事件流，按身份过滤后应用幂等 delta
// Start/Stop 构成一对受管的订阅获取/释放；Stop 幂等，所有退出路径都必须经过它
type Service struct {
	parent context.Context
	state  *itemstate.State
	loader *snapshotloader.Loader
	client chainclient.ChainClient
	chain  string

	marketplaceAddr common.Address
	auctionAddr     common.Address
	tokenAddr       common.Address
	account         string

	marketplaceAbi abi.ABI
	auctionAbi     abi.ABI
	tokenAbi       abi.ABI

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New 构造事件同步器
func New(ctx context.Context, state *itemstate.State, loader *snapshotloader.Loader, client chainclient.ChainClient,
	chain string, marketplaceAddr, auctionAddr, tokenAddr, account string) (*Service, error) {
	marketplaceAbi, err := abi.JSON(strings.NewReader(marketclient.MarketplaceABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse marketplace abi")
	}
	auctionAbi, err := abi.JSON(strings.NewReader(marketclient.AuctionABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse auction abi")
	}
	tokenAbi, err := abi.JSON(strings.NewReader(marketclient.TokenABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse token abi")
	}

	return &Service{
		parent:          ctx,
		state:           state,
		loader:          loader,
		client:          client,
		chain:           chain,
		marketplaceAddr: common.HexToAddress(marketplaceAddr),
		auctionAddr:     common.HexToAddress(auctionAddr),
		tokenAddr:       common.HexToAddress(tokenAddr),
		account:         account,
		marketplaceAbi:  marketplaceAbi,
		auctionAbi:      auctionAbi,
		tokenAbi:        tokenAbi,
	}, nil
}

// Start 建立订阅并启动同步循环；重复调用先释放旧订阅
func (s *Service) Start() error {
	s.Stop()

	// 以当前块高为订阅起点；拿不到块高说明订阅建立失败
	startBlock, err := s.client.BlockNumber(s.parent)
	if err != nil {
		return errors.Wrapf(types.ErrSubscription, "failed on get start block: %v", err)
	}

	ctx, cancel := context.WithCancel(s.parent)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	threading.GoSafe(func() {
		defer close(done)
		s.syncEventLoop(ctx, startBlock)
	})

	xzap.WithContext(s.parent).Info("event sync started",
		zap.Uint64("start_block", startBlock), zap.String("chain", s.chain))
	return nil
}

// Stop 释放订阅；幂等，可在任何退出路径上调用
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		xzap.WithContext(s.parent).Info("event sync stopped")
	}
}

// syncEventLoop 轮询式事件同步循环
// 同一事件源内按投递顺序应用；不同源之间不保证顺序 (各源拥有互不重叠的实体字段)
func (s *Service) syncEventLoop(ctx context.Context, startBlock uint64) {
	lastSyncBlock := startBlock
	maxDiff := MultiChainMaxBlockDifference[s.chain]

	for {
		select {
		case <-ctx.Done():
			xzap.WithContext(ctx).Info("sync event loop stopped due to context cancellation")
			return
		default:
		}

		currentBlockNum, err := s.client.BlockNumber(ctx)
		if err != nil {
			xzap.WithContext(ctx).Error("failed on get current block number", zap.Error(err))
			sleepCtx(ctx, SleepInterval*time.Second)
			continue
		}

		// 预留重组缓冲；没有新块则等待
		if lastSyncBlock > currentBlockNum-maxDiff {
			sleepCtx(ctx, SleepInterval*time.Second)
			continue
		}

		startRange := lastSyncBlock
		endRange := startRange + SyncBlockPeriod
		if endRange > currentBlockNum-maxDiff {
			endRange = currentBlockNum - maxDiff
		}

		query := ethereum.FilterQuery{
			FromBlock: new(big.Int).SetUint64(startRange),
			ToBlock:   new(big.Int).SetUint64(endRange),
			Addresses: []common.Address{s.marketplaceAddr, s.auctionAddr, s.tokenAddr},
		}

		logs, err := s.client.FilterLogs(ctx, query)
		if err != nil {
			xzap.WithContext(ctx).Error("failed on filter logs", zap.Error(err))
			sleepCtx(ctx, SleepInterval*time.Second)
			continue
		}

		for _, log := range logs {
			s.dispatch(ctx, log)
		}

		lastSyncBlock = endRange + 1

		xzap.WithContext(ctx).Debug("sync item events ...",
			zap.Uint64("start_block", startRange),
			zap.Uint64("end_block", endRange),
			zap.Int("logs", len(logs)))
	}
}

// dispatch 按合约地址 + topic 分发到对应的事件处理器
func (s *Service) dispatch(ctx context.Context, log ethereumTypes.Log) {
	if len(log.Topics) == 0 {
		return
	}
	topic := log.Topics[0]

	switch log.Address {
	case s.marketplaceAddr:
		switch topic {
		case s.marketplaceAbi.Events["ItemListed"].ID:
			s.handleItemListed(ctx, log)
		case s.marketplaceAbi.Events["ItemUpdated"].ID:
			s.handleItemUpdated(ctx, log)
		case s.marketplaceAbi.Events["ItemCanceled"].ID:
			s.handleItemCanceled(ctx, log)
		case s.marketplaceAbi.Events["ItemSold"].ID:
			s.handleItemSold(ctx, log)
		case s.marketplaceAbi.Events["OfferCreated"].ID:
			s.handleOfferCreated(ctx, log)
		case s.marketplaceAbi.Events["OfferCanceled"].ID:
			s.handleOfferCanceled(ctx, log)
		}
	case s.auctionAddr:
		switch topic {
		case s.auctionAbi.Events["AuctionCreated"].ID:
			s.handleAuctionCreated(ctx, log)
		case s.auctionAbi.Events["UpdateAuctionStartTime"].ID:
			s.handleAuctionStartTimeUpdated(ctx, log)
		case s.auctionAbi.Events["UpdateAuctionEndTime"].ID:
			s.handleAuctionEndTimeUpdated(ctx, log)
		case s.auctionAbi.Events["UpdateAuctionReservePrice"].ID:
			s.handleAuctionReservePriceUpdated(ctx, log)
		case s.auctionAbi.Events["UpdateMinBidIncrement"].ID:
			s.handleMinBidIncrementUpdated(ctx, log)
		case s.auctionAbi.Events["UpdateBidWithdrawalLockTime"].ID:
			s.handleWithdrawalLockTimeUpdated(ctx, log)
		case s.auctionAbi.Events["BidPlaced"].ID:
			s.handleBidPlaced(ctx, log)
		case s.auctionAbi.Events["BidWithdrawn"].ID:
			s.handleBidWithdrawn(ctx, log)
		case s.auctionAbi.Events["AuctionCancelled"].ID:
			s.handleAuctionCancelled(ctx, log)
		case s.auctionAbi.Events["AuctionResulted"].ID:
			s.handleAuctionResulted(ctx, log)
		}
	case s.tokenAddr:
		if topic == s.tokenAbi.Events["ApprovalForAll"].ID {
			s.handleApprovalForAll(ctx, log)
		}
	}
}

func topicAddress(log ethereumTypes.Log, index int) string {
	return common.BytesToAddress(log.Topics[index].Bytes()).Hex()
}

func topicBig(log ethereumTypes.Log, index int) *big.Int {
	return new(big.Int).SetBytes(log.Topics[index].Bytes())
}

func (s *Service) handleItemListed(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		TokenId        *big.Int
		Quantity       *big.Int
		PricePerItem   *big.Int
		StartingTime   *big.Int
		IsPrivate      bool
		AllowedAddress common.Address
	}
	if err := s.marketplaceAbi.UnpackIntoInterface(&event, "ItemListed", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack ItemListed event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyItemListed(itemstate.ItemListedEvent{
		Owner:          topicAddress(log, 1),
		Nft:            topicAddress(log, 2),
		TokenID:        event.TokenId,
		Quantity:       event.Quantity,
		PricePerItem:   event.PricePerItem,
		StartingTime:   event.StartingTime,
		IsPrivate:      event.IsPrivate,
		AllowedAddress: event.AllowedAddress.Hex(),
	})
}

func (s *Service) handleItemUpdated(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		TokenId  *big.Int
		NewPrice *big.Int
	}
	if err := s.marketplaceAbi.UnpackIntoInterface(&event, "ItemUpdated", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack ItemUpdated event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyItemUpdated(itemstate.ItemUpdatedEvent{
		Owner:    topicAddress(log, 1),
		Nft:      topicAddress(log, 2),
		TokenID:  event.TokenId,
		NewPrice: event.NewPrice,
	})
}

func (s *Service) handleItemCanceled(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		TokenId *big.Int
	}
	if err := s.marketplaceAbi.UnpackIntoInterface(&event, "ItemCanceled", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack ItemCanceled event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyItemCanceled(itemstate.ItemCanceledEvent{
		Owner:   topicAddress(log, 1),
		Nft:     topicAddress(log, 2),
		TokenID: event.TokenId,
	})
}

func (s *Service) handleItemSold(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		TokenId *big.Int
		Price   *big.Int
	}
	if err := s.marketplaceAbi.UnpackIntoInterface(&event, "ItemSold", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack ItemSold event", zap.Error(err))
		return
	}
	if len(log.Topics) < 4 {
		return
	}

	s.state.ApplyItemSold(itemstate.ItemSoldEvent{
		Seller:   topicAddress(log, 1),
		Buyer:    topicAddress(log, 2),
		Nft:      topicAddress(log, 3),
		TokenID:  event.TokenId,
		Price:    event.Price,
		TxHash:   log.TxHash.Hex(),
		SaleTime: time.Now(),
	})
}

func (s *Service) handleOfferCreated(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		TokenId      *big.Int
		PayToken     common.Address
		Quantity     *big.Int
		PricePerItem *big.Int
		Deadline     *big.Int
	}
	if err := s.marketplaceAbi.UnpackIntoInterface(&event, "OfferCreated", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack OfferCreated event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyOfferCreated(itemstate.OfferCreatedEvent{
		Creator:      topicAddress(log, 1),
		Nft:          topicAddress(log, 2),
		TokenID:      event.TokenId,
		PayToken:     event.PayToken.Hex(),
		Quantity:     event.Quantity,
		PricePerItem: event.PricePerItem,
		Deadline:     event.Deadline,
	})
}

func (s *Service) handleOfferCanceled(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		TokenId *big.Int
	}
	if err := s.marketplaceAbi.UnpackIntoInterface(&event, "OfferCanceled", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack OfferCanceled event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyOfferCanceled(itemstate.OfferCanceledEvent{
		Creator: topicAddress(log, 1),
		Nft:     topicAddress(log, 2),
		TokenID: event.TokenId,
	})
}

// handleAuctionCreated 事件不携带拍卖参数，匹配后回查快照源安装实体
func (s *Service) handleAuctionCreated(ctx context.Context, log ethereumTypes.Log) {
	if len(log.Topics) < 3 {
		return
	}

	event := itemstate.AuctionCreatedEvent{
		Nft:     topicAddress(log, 1),
		TokenID: topicBig(log, 2),
	}
	if !s.state.MatchesAuctionCreated(event) {
		return
	}

	auction, err := s.loader.FetchAuction(ctx, s.state.Identity())
	if err != nil {
		xzap.WithContext(ctx).Error("failed on refetch auction after AuctionCreated", zap.Error(err))
		return
	}
	s.state.InstallAuction(auction)
}

func (s *Service) handleAuctionStartTimeUpdated(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		StartTime *big.Int
	}
	if err := s.auctionAbi.UnpackIntoInterface(&event, "UpdateAuctionStartTime", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack UpdateAuctionStartTime event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyAuctionStartTimeUpdated(itemstate.AuctionStartTimeUpdatedEvent{
		Nft:       topicAddress(log, 1),
		TokenID:   topicBig(log, 2),
		StartTime: event.StartTime,
	})
}

func (s *Service) handleAuctionEndTimeUpdated(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		EndTime *big.Int
	}
	if err := s.auctionAbi.UnpackIntoInterface(&event, "UpdateAuctionEndTime", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack UpdateAuctionEndTime event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyAuctionEndTimeUpdated(itemstate.AuctionEndTimeUpdatedEvent{
		Nft:     topicAddress(log, 1),
		TokenID: topicBig(log, 2),
		EndTime: event.EndTime,
	})
}

func (s *Service) handleAuctionReservePriceUpdated(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		ReservePrice *big.Int
	}
	if err := s.auctionAbi.UnpackIntoInterface(&event, "UpdateAuctionReservePrice", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack UpdateAuctionReservePrice event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyAuctionReservePriceUpdated(itemstate.AuctionReservePriceUpdatedEvent{
		Nft:          topicAddress(log, 1),
		TokenID:      topicBig(log, 2),
		ReservePrice: event.ReservePrice,
	})
}

// handleMinBidIncrementUpdated 全局参数事件，跳过身份过滤
func (s *Service) handleMinBidIncrementUpdated(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		MinBidIncrement *big.Int
	}
	if err := s.auctionAbi.UnpackIntoInterface(&event, "UpdateMinBidIncrement", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack UpdateMinBidIncrement event", zap.Error(err))
		return
	}

	s.state.ApplyMinBidIncrementUpdated(itemstate.MinBidIncrementUpdatedEvent{Value: event.MinBidIncrement})
}

// handleWithdrawalLockTimeUpdated 全局参数事件，跳过身份过滤
func (s *Service) handleWithdrawalLockTimeUpdated(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		BidWithdrawalLockTime *big.Int
	}
	if err := s.auctionAbi.UnpackIntoInterface(&event, "UpdateBidWithdrawalLockTime", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack UpdateBidWithdrawalLockTime event", zap.Error(err))
		return
	}

	s.state.ApplyWithdrawalLockTimeUpdated(itemstate.WithdrawalLockTimeUpdatedEvent{Value: event.BidWithdrawalLockTime})
}

func (s *Service) handleBidPlaced(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		Bid *big.Int
	}
	if err := s.auctionAbi.UnpackIntoInterface(&event, "BidPlaced", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack BidPlaced event", zap.Error(err))
		return
	}
	if len(log.Topics) < 4 {
		return
	}

	s.state.ApplyBidPlaced(itemstate.BidPlacedEvent{
		Nft:     topicAddress(log, 1),
		TokenID: topicBig(log, 2),
		Bidder:  topicAddress(log, 3),
		Amount:  event.Bid,
		BidTime: time.Now().Unix(),
	})
}

func (s *Service) handleBidWithdrawn(ctx context.Context, log ethereumTypes.Log) {
	if len(log.Topics) < 4 {
		return
	}

	s.state.ApplyBidWithdrawn(itemstate.BidWithdrawnEvent{
		Nft:     topicAddress(log, 1),
		TokenID: topicBig(log, 2),
		Bidder:  topicAddress(log, 3),
	})
}

func (s *Service) handleAuctionCancelled(ctx context.Context, log ethereumTypes.Log) {
	if len(log.Topics) < 3 {
		return
	}

	s.state.ApplyAuctionCancelled(itemstate.AuctionCancelledEvent{
		Nft:     topicAddress(log, 1),
		TokenID: topicBig(log, 2),
	})
}

func (s *Service) handleAuctionResulted(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		WinningBid *big.Int
	}
	if err := s.auctionAbi.UnpackIntoInterface(&event, "AuctionResulted", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack AuctionResulted event", zap.Error(err))
		return
	}
	if len(log.Topics) < 4 {
		return
	}

	s.state.ApplyAuctionResulted(itemstate.AuctionResultedEvent{
		Nft:        topicAddress(log, 1),
		TokenID:    topicBig(log, 2),
		Winner:     topicAddress(log, 3),
		WinningBid: event.WinningBid,
	})
}

// handleApprovalForAll 仅关心当前连接账户；事件结果覆盖本地乐观状态
func (s *Service) handleApprovalForAll(ctx context.Context, log ethereumTypes.Log) {
	var event struct {
		Approved bool
	}
	if err := s.tokenAbi.UnpackIntoInterface(&event, "ApprovalForAll", log.Data); err != nil {
		xzap.WithContext(ctx).Error("failed on unpack ApprovalForAll event", zap.Error(err))
		return
	}
	if len(log.Topics) < 3 {
		return
	}
	if !strings.EqualFold(topicAddress(log, 1), s.account) {
		return
	}

	s.state.ApplyApprovalForAll(itemstate.ApprovalForAllEvent{
		Owner:    topicAddress(log, 1),
		Operator: topicAddress(log, 2),
		Approved: event.Approved,
	})
}

// sleepCtx 可被取消的休眠
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
