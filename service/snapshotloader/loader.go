package snapshotloader

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/zeromicro/go-zero/core/stores/kv"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapItemView/logger/xzap"
	"github.com/ProjectsTask/EasySwapItemView/service/comm"
	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

const (
	// 集合元数据与账户资料的缓存 TTL (秒)；它们几乎不变，没必要每次身份切换都回源
	metaCacheSeconds = 600

	collectionCacheKey = "cache:itemview:collection:%s"
	profileCacheKey    = "cache:itemview:profile:%s"
)

// ContractReader 快照所需的链上只读能力
type ContractReader interface {
	IsApprovedForAll(ctx context.Context, owner string, spender types.Spender) (bool, error)
	OwnerOf(ctx context.Context, tokenID *big.Int) (string, error)
	MinBidIncrement(ctx context.Context) (*big.Int, error)
	BidWithdrawalLockTime(ctx context.Context) (*big.Int, error)
}

// Loader 快照加载器：聚合查询服务与链上读，逐字段独立降级
type Loader struct {
	cli     *Client
	market  ContractReader
	kvStore kv.Store // 可为 nil (未配置 redis 时直连回源)
	account string
}

// New 构造快照加载器
func New(cli *Client, market ContractReader, kvStore kv.Store, account string) *Loader {
	return &Loader{
		cli:     cli,
		market:  market,
		kvStore: kvStore,
		account: account,
	}
}

// Load 加载一次完整快照
// 任一子抓取失败只降级对应字段为缺失，不中断其余抓取，也不让整个快照失败
func (l *Loader) Load(ctx context.Context, identity types.ItemIdentity) itemstate.Snapshot {
	var snap itemstate.Snapshot
	log := xzap.WithContext(ctx)

	var err error
	if snap.Listing, err = l.cli.GetListing(ctx, identity); err != nil {
		log.Warn("failed on load listing", zap.Error(err))
	}
	if snap.Offers, err = l.cli.GetOffers(ctx, identity); err != nil {
		log.Warn("failed on load offers", zap.Error(err))
	}
	if snap.TradeHistory, err = l.cli.GetTradeHistory(ctx, identity); err != nil {
		log.Warn("failed on load trade history", zap.Error(err))
	}
	if snap.Auction, err = l.cli.GetAuction(ctx, identity); err != nil {
		log.Warn("failed on load auction", zap.Error(err))
	}
	if snap.Bid, err = l.cli.GetHighestBid(ctx, identity); err != nil {
		log.Warn("failed on load highest bid", zap.Error(err))
	}
	if snap.Metadata, err = l.cli.GetMetadata(ctx, identity); err != nil {
		log.Warn("failed on load metadata", zap.Error(err))
	}

	// token 标准决定填充单持有人投影还是多持有人投影
	kind, holderInfo, err := l.cli.GetTokenKind(ctx, identity)
	if err != nil {
		log.Warn("failed on load token kind", zap.Error(err))
	}
	snap.TokenKind = kind
	snap.HolderInfo = holderInfo

	if kind == types.TokenKind721 {
		owner, err := l.market.OwnerOf(ctx, identity.TokenIDBig())
		if err != nil {
			log.Warn("failed on load owner", zap.Error(err))
		} else {
			snap.Owner = owner
			// 持有人资料失败不影响持有人地址本身
			if snap.OwnerProfile, err = l.loadProfile(ctx, owner); err != nil {
				log.Warn("failed on load owner profile", zap.Error(err))
			}
		}
	}

	if snap.Collection, err = l.loadCollection(ctx, identity.CollectionAddress); err != nil {
		log.Warn("failed on load collection meta", zap.Error(err))
	}

	// 拍卖行全局参数
	if v, err := l.market.MinBidIncrement(ctx); err != nil {
		log.Warn("failed on load min bid increment", zap.Error(err))
	} else {
		snap.MinBidIncrement = comm.ToDisplay(v)
	}
	if v, err := l.market.BidWithdrawalLockTime(ctx); err != nil {
		log.Warn("failed on load bid withdrawal lock time", zap.Error(err))
	} else {
		snap.WithdrawLockTime = v.Int64()
	}

	// 连接账户的授权状态
	if l.account != "" {
		snap.Approvals = make(map[types.Spender]bool, 2)
		for _, spender := range []types.Spender{types.SpenderMarketplace, types.SpenderAuction} {
			approved, err := l.market.IsApprovedForAll(ctx, l.account, spender)
			if err != nil {
				log.Warn("failed on load approval status",
					zap.String("spender", string(spender)), zap.Error(err))
				continue
			}
			snap.Approvals[spender] = approved
		}
	}

	return snap
}

// FetchAuction 单独回查拍卖实体 (AuctionCreated 事件不携带参数)
func (l *Loader) FetchAuction(ctx context.Context, identity types.ItemIdentity) (*types.Auction, error) {
	return l.cli.GetAuction(ctx, identity)
}

// RecordView 上报浏览并返回最新计数
func (l *Loader) RecordView(ctx context.Context, identity types.ItemIdentity) (int64, error) {
	return l.cli.RecordView(ctx, identity)
}

func (l *Loader) loadCollection(ctx context.Context, addr string) (*types.CollectionMeta, error) {
	key := fmt.Sprintf(collectionCacheKey, addr)
	if cached, ok := l.cacheGet(key); ok {
		var meta types.CollectionMeta
		if json.Unmarshal([]byte(cached), &meta) == nil {
			return &meta, nil
		}
	}

	meta, err := l.cli.GetCollectionMeta(ctx, addr)
	if err != nil || meta == nil {
		return nil, err
	}
	l.cacheSet(key, meta)
	return meta, nil
}

func (l *Loader) loadProfile(ctx context.Context, addr string) (*types.AccountProfile, error) {
	key := fmt.Sprintf(profileCacheKey, addr)
	if cached, ok := l.cacheGet(key); ok {
		var profile types.AccountProfile
		if json.Unmarshal([]byte(cached), &profile) == nil {
			return &profile, nil
		}
	}

	profile, err := l.cli.GetAccountProfile(ctx, addr)
	if err != nil || profile == nil {
		return nil, err
	}
	l.cacheSet(key, profile)
	return profile, nil
}

func (l *Loader) cacheGet(key string) (string, bool) {
	if l.kvStore == nil {
		return "", false
	}
	v, err := l.kvStore.Get(key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (l *Loader) cacheSet(key string, value interface{}) {
	if l.kvStore == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	// 缓存失败只影响下次回源，不值得向上传播
	_ = l.kvStore.Setex(key, string(raw), metaCacheSeconds)
}
