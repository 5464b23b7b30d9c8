package actions

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapItemView/chain/marketclient"
	"github.com/ProjectsTask/EasySwapItemView/logger/xzap"
	"github.com/ProjectsTask/EasySwapItemView/service/comm"
	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

// Orchestrator 动作编排器
// 每类动作持有独立的在途标记：动作在途期间重复触发是显式 no-op (ErrActionInProgress)，
// 不会产生第二笔交易；标记在所有退出路径上清除
type Orchestrator struct {
	state  *itemstate.State
	market *marketclient.MarketClient

	mu         sync.Mutex
	inProgress map[string]bool
}

// New 构造编排器
func New(state *itemstate.State, market *marketclient.MarketClient) *Orchestrator {
	return &Orchestrator{
		state:      state,
		market:     market,
		inProgress: make(map[string]bool),
	}
}

// InProgress 指定动作是否在途 (供读侧投影)
func (o *Orchestrator) InProgress(action string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inProgress[action]
}

// begin 置位在途标记；已在途返回 false
func (o *Orchestrator) begin(action string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inProgress[action] {
		return false
	}
	o.inProgress[action] = true
	return true
}

func (o *Orchestrator) end(action string) {
	o.mu.Lock()
	delete(o.inProgress, action)
	o.mu.Unlock()
}

// 动作名，同时用作在途标记键与 API 路由参数
const (
	ActionListItem       = "list_item"
	ActionUpdatePrice    = "update_price"
	ActionCancelListing  = "cancel_listing"
	ActionBuy            = "buy"
	ActionCreateOffer    = "create_offer"
	ActionCancelOffer    = "cancel_offer"
	ActionAcceptOffer    = "accept_offer"
	ActionCreateAuction  = "create_auction"
	ActionUpdateAuction  = "update_auction"
	ActionCancelAuction  = "cancel_auction"
	ActionResultAuction  = "result_auction"
	ActionPlaceBid       = "place_bid"
	ActionWithdrawBid    = "withdraw_bid"
	ActionApproveSpender = "approve"
)

// ListItem 挂单
func (o *Orchestrator) ListItem(ctx context.Context, quantity int64, price decimal.Decimal, startingTime int64, allowedAddress string) (string, error) {
	if !o.begin(ActionListItem) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionListItem)

	id := o.state.Identity()
	tx, err := o.market.ListItem(ctx, id.TokenIDBig(), big.NewInt(quantity),
		comm.ToLedger(price), big.NewInt(startingTime), allowedAddress)
	if err != nil {
		return "", errors.Wrap(err, "failed on submit listItem")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	isPrivate := allowedAddress != "" && allowedAddress != comm.ZeroAddress
	o.state.ApplyItemListed(itemstate.ItemListedEvent{
		Owner:          o.state.Account(),
		Nft:            id.CollectionAddress,
		TokenID:        id.TokenIDBig(),
		Quantity:       big.NewInt(quantity),
		PricePerItem:   comm.ToLedger(price),
		StartingTime:   big.NewInt(startingTime),
		IsPrivate:      isPrivate,
		AllowedAddress: allowedAddress,
	})

	xzap.WithContext(ctx).Info("item listed", zap.String("tx", tx.Hash().Hex()))
	return uuid.NewString(), nil
}

// UpdatePrice 改价；无挂单时拒绝
func (o *Orchestrator) UpdatePrice(ctx context.Context, newPrice decimal.Decimal) (string, error) {
	if !o.begin(ActionUpdatePrice) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionUpdatePrice)

	if o.state.Listing() == nil {
		return "", types.ErrNoListing
	}

	id := o.state.Identity()
	tx, err := o.market.UpdateListing(ctx, id.TokenIDBig(), comm.ToLedger(newPrice))
	if err != nil {
		return "", errors.Wrap(err, "failed on submit updateListing")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyItemUpdated(itemstate.ItemUpdatedEvent{
		Owner:    o.state.Account(),
		Nft:      id.CollectionAddress,
		TokenID:  id.TokenIDBig(),
		NewPrice: comm.ToLedger(newPrice),
	})
	return uuid.NewString(), nil
}

// CancelListing 撤单
func (o *Orchestrator) CancelListing(ctx context.Context) (string, error) {
	if !o.begin(ActionCancelListing) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionCancelListing)

	if o.state.Listing() == nil {
		return "", types.ErrNoListing
	}

	id := o.state.Identity()
	tx, err := o.market.CancelListing(ctx, id.TokenIDBig())
	if err != nil {
		return "", errors.Wrap(err, "failed on submit cancelListing")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyItemCanceled(itemstate.ItemCanceledEvent{
		Owner:   o.state.Account(),
		Nft:     id.CollectionAddress,
		TokenID: id.TokenIDBig(),
	})
	return uuid.NewString(), nil
}

// Buy 按当前挂单价购买
func (o *Orchestrator) Buy(ctx context.Context) (string, error) {
	if !o.begin(ActionBuy) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionBuy)

	listing := o.state.Listing()
	if listing == nil {
		return "", types.ErrNoListing
	}

	id := o.state.Identity()
	total := listing.PricePerItem.Mul(decimal.NewFromInt(listing.Quantity))
	tx, err := o.market.BuyItem(ctx, id.TokenIDBig(), comm.ToLedger(total))
	if err != nil {
		return "", errors.Wrap(err, "failed on submit buyItem")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	// 乐观入账；事件路径携带同一 tx hash，成交历史只会追加一次
	o.state.ApplyItemSold(itemstate.ItemSoldEvent{
		Seller:   listing.Owner,
		Buyer:    o.state.Account(),
		Nft:      id.CollectionAddress,
		TokenID:  id.TokenIDBig(),
		Price:    comm.ToLedger(listing.PricePerItem),
		TxHash:   tx.Hash().Hex(),
		SaleTime: time.Now(),
	})
	return uuid.NewString(), nil
}

// CreateOffer 报价；先验余额，额度不足时自动补授权
func (o *Orchestrator) CreateOffer(ctx context.Context, price decimal.Decimal, quantity int64, deadline int64) (string, error) {
	if !o.begin(ActionCreateOffer) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionCreateOffer)

	account := o.state.Account()
	total := comm.ToLedger(price.Mul(decimal.NewFromInt(quantity)))

	balance, err := o.market.PayTokenBalance(ctx, account)
	if err != nil {
		return "", errors.Wrap(err, "failed on check pay token balance")
	}
	if balance.Cmp(total) < 0 {
		return "", types.ErrInsufficientBalance
	}

	allowance, err := o.market.PayTokenAllowance(ctx, account, types.SpenderMarketplace)
	if err != nil {
		return "", errors.Wrap(err, "failed on check pay token allowance")
	}
	if allowance.Cmp(total) < 0 {
		approveTx, err := o.market.ApprovePayToken(ctx, types.SpenderMarketplace, total)
		if err != nil {
			return "", errors.Wrap(err, "failed on submit pay token approve")
		}
		if err := o.market.WaitMined(ctx, approveTx); err != nil {
			return "", err
		}
	}

	id := o.state.Identity()
	tx, err := o.market.CreateOffer(ctx, id.TokenIDBig(), big.NewInt(quantity),
		comm.ToLedger(price), big.NewInt(deadline))
	if err != nil {
		return "", errors.Wrap(err, "failed on submit createOffer")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyOfferCreated(itemstate.OfferCreatedEvent{
		Creator:      account,
		Nft:          id.CollectionAddress,
		TokenID:      id.TokenIDBig(),
		PayToken:     o.market.PayTokenAddress(),
		Quantity:     big.NewInt(quantity),
		PricePerItem: comm.ToLedger(price),
		Deadline:     big.NewInt(deadline),
	})
	return uuid.NewString(), nil
}

// CancelOffer 撤回自己的报价
func (o *Orchestrator) CancelOffer(ctx context.Context) (string, error) {
	if !o.begin(ActionCancelOffer) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionCancelOffer)

	id := o.state.Identity()
	tx, err := o.market.CancelOffer(ctx, id.TokenIDBig())
	if err != nil {
		return "", errors.Wrap(err, "failed on submit cancelOffer")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyOfferCanceled(itemstate.OfferCanceledEvent{
		Creator: o.state.Account(),
		Nft:     id.CollectionAddress,
		TokenID: id.TokenIDBig(),
	})
	return uuid.NewString(), nil
}

// AcceptOffer 接受指定 creator 的报价，成交后持有权转移给对方
func (o *Orchestrator) AcceptOffer(ctx context.Context, creator string) (string, error) {
	if !o.begin(ActionAcceptOffer) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionAcceptOffer)

	offer := o.state.OfferOf(creator)
	if offer == nil {
		return "", errors.New("no such offer")
	}

	id := o.state.Identity()
	tx, err := o.market.AcceptOffer(ctx, id.TokenIDBig(), creator)
	if err != nil {
		return "", errors.Wrap(err, "failed on submit acceptOffer")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyItemSold(itemstate.ItemSoldEvent{
		Seller:   o.state.Account(),
		Buyer:    offer.Creator,
		Nft:      id.CollectionAddress,
		TokenID:  id.TokenIDBig(),
		Price:    comm.ToLedger(offer.PricePerItem),
		TxHash:   tx.Hash().Hex(),
		SaleTime: time.Now(),
	})
	return uuid.NewString(), nil
}

// CreateAuction 创建拍卖
func (o *Orchestrator) CreateAuction(ctx context.Context, reservePrice decimal.Decimal, startTime, endTime int64) (string, error) {
	if !o.begin(ActionCreateAuction) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionCreateAuction)

	id := o.state.Identity()
	tx, err := o.market.CreateAuction(ctx, id.TokenIDBig(),
		comm.ToLedger(reservePrice), big.NewInt(startTime), big.NewInt(endTime))
	if err != nil {
		return "", errors.Wrap(err, "failed on submit createAuction")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	// 乐观安装；AuctionCreated 事件随后触发回查，以快照源数据为准
	o.state.InstallAuction(&types.Auction{
		StartTime:    startTime,
		EndTime:      endTime,
		ReservePrice: reservePrice,
	})
	return uuid.NewString(), nil
}

// AuctionUpdate 拍卖参数修改请求；为 nil 的字段不动
type AuctionUpdate struct {
	StartTime    *int64
	EndTime      *int64
	ReservePrice *decimal.Decimal
}

// UpdateAuction 逐字段修改拍卖，每个字段一笔独立交易
func (o *Orchestrator) UpdateAuction(ctx context.Context, upd AuctionUpdate) (string, error) {
	if !o.begin(ActionUpdateAuction) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionUpdateAuction)

	if o.state.Auction() == nil {
		return "", types.ErrNoAuction
	}
	id := o.state.Identity()

	if upd.StartTime != nil {
		tx, err := o.market.UpdateAuctionStartTime(ctx, id.TokenIDBig(), big.NewInt(*upd.StartTime))
		if err != nil {
			return "", errors.Wrap(err, "failed on submit updateAuctionStartTime")
		}
		if err := o.market.WaitMined(ctx, tx); err != nil {
			return "", err
		}
		o.state.ApplyAuctionStartTimeUpdated(itemstate.AuctionStartTimeUpdatedEvent{
			Nft: id.CollectionAddress, TokenID: id.TokenIDBig(), StartTime: big.NewInt(*upd.StartTime),
		})
	}
	if upd.EndTime != nil {
		tx, err := o.market.UpdateAuctionEndTime(ctx, id.TokenIDBig(), big.NewInt(*upd.EndTime))
		if err != nil {
			return "", errors.Wrap(err, "failed on submit updateAuctionEndTime")
		}
		if err := o.market.WaitMined(ctx, tx); err != nil {
			return "", err
		}
		o.state.ApplyAuctionEndTimeUpdated(itemstate.AuctionEndTimeUpdatedEvent{
			Nft: id.CollectionAddress, TokenID: id.TokenIDBig(), EndTime: big.NewInt(*upd.EndTime),
		})
	}
	if upd.ReservePrice != nil {
		tx, err := o.market.UpdateAuctionReservePrice(ctx, id.TokenIDBig(), comm.ToLedger(*upd.ReservePrice))
		if err != nil {
			return "", errors.Wrap(err, "failed on submit updateAuctionReservePrice")
		}
		if err := o.market.WaitMined(ctx, tx); err != nil {
			return "", err
		}
		o.state.ApplyAuctionReservePriceUpdated(itemstate.AuctionReservePriceUpdatedEvent{
			Nft: id.CollectionAddress, TokenID: id.TokenIDBig(), ReservePrice: comm.ToLedger(*upd.ReservePrice),
		})
	}
	return uuid.NewString(), nil
}

// CancelAuction 取消拍卖；实体清空，阶段进入终态
func (o *Orchestrator) CancelAuction(ctx context.Context) (string, error) {
	if !o.begin(ActionCancelAuction) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionCancelAuction)

	if o.state.Auction() == nil {
		return "", types.ErrNoAuction
	}

	id := o.state.Identity()
	tx, err := o.market.CancelAuction(ctx, id.TokenIDBig())
	if err != nil {
		return "", errors.Wrap(err, "failed on submit cancelAuction")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyAuctionCancelled(itemstate.AuctionCancelledEvent{
		Nft: id.CollectionAddress, TokenID: id.TokenIDBig(),
	})
	return uuid.NewString(), nil
}

// ResultAuction 结算拍卖
// 成功后先置本地 resulted 标记让阶段立即单调推进，胜者与成交价等确认事件到达再补齐
func (o *Orchestrator) ResultAuction(ctx context.Context) (string, error) {
	if !o.begin(ActionResultAuction) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionResultAuction)

	if o.state.Auction() == nil {
		return "", types.ErrNoAuction
	}

	id := o.state.Identity()
	tx, err := o.market.ResultAuction(ctx, id.TokenIDBig())
	if err != nil {
		return "", errors.Wrap(err, "failed on submit resultAuction")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.SetLocallyResulted()
	return uuid.NewString(), nil
}

// PlaceBid 出价；金额低于最小下一口价时拒绝
func (o *Orchestrator) PlaceBid(ctx context.Context, amount decimal.Decimal) (string, error) {
	if !o.begin(ActionPlaceBid) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionPlaceBid)

	if o.state.Auction() == nil {
		return "", types.ErrNoAuction
	}
	if bid := o.state.HighestBid(); bid != nil {
		minNext := bid.Amount.Add(o.state.MinBidIncrement())
		if amount.LessThan(minNext) {
			return "", errors.Errorf("bid below minimum: want at least %s", minNext.String())
		}
	}

	id := o.state.Identity()
	tx, err := o.market.PlaceBid(ctx, id.TokenIDBig(), comm.ToLedger(amount))
	if err != nil {
		return "", errors.Wrap(err, "failed on submit placeBid")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyBidPlaced(itemstate.BidPlacedEvent{
		Nft:     id.CollectionAddress,
		TokenID: id.TokenIDBig(),
		Bidder:  o.state.Account(),
		Amount:  comm.ToLedger(amount),
		BidTime: time.Now().Unix(),
	})
	return uuid.NewString(), nil
}

// WithdrawBid 撤回出价；仅当前最高出价人可撤
func (o *Orchestrator) WithdrawBid(ctx context.Context) (string, error) {
	if !o.begin(ActionWithdrawBid) {
		return "", types.ErrActionInProgress
	}
	defer o.end(ActionWithdrawBid)

	bid := o.state.HighestBid()
	if bid == nil {
		return "", errors.New("no bid to withdraw")
	}

	id := o.state.Identity()
	tx, err := o.market.WithdrawBid(ctx, id.TokenIDBig())
	if err != nil {
		return "", errors.Wrap(err, "failed on submit withdrawBid")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		return "", err
	}

	o.state.ApplyBidWithdrawn(itemstate.BidWithdrawnEvent{
		Nft:     id.CollectionAddress,
		TokenID: id.TokenIDBig(),
		Bidder:  bid.Bidder,
	})
	return uuid.NewString(), nil
}

// Approve 给指定 spender 授权整个集合
// 本地只推进到 Approving/回滚；最终 Approved 由 ApprovalForAll 事件权威确认
func (o *Orchestrator) Approve(ctx context.Context, spender types.Spender) (string, error) {
	action := ActionApproveSpender + ":" + string(spender)
	if !o.begin(action) {
		return "", types.ErrActionInProgress
	}
	defer o.end(action)

	o.state.BeginApproval(spender)

	tx, err := o.market.SetApprovalForAll(ctx, spender, true)
	if err != nil {
		o.state.FinishApproval(spender, false)
		return "", errors.Wrap(err, "failed on submit setApprovalForAll")
	}
	if err := o.market.WaitMined(ctx, tx); err != nil {
		o.state.FinishApproval(spender, false)
		return "", err
	}

	o.state.FinishApproval(spender, true)
	return uuid.NewString(), nil
}
