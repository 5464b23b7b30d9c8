package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/kv"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapItemView/api/router"
	"github.com/ProjectsTask/EasySwapItemView/api/ws"
	"github.com/ProjectsTask/EasySwapItemView/app"
	"github.com/ProjectsTask/EasySwapItemView/chain/chainclient"
	"github.com/ProjectsTask/EasySwapItemView/chain/marketclient"
	"github.com/ProjectsTask/EasySwapItemView/logger/xzap"
	"github.com/ProjectsTask/EasySwapItemView/service/actions"
	"github.com/ProjectsTask/EasySwapItemView/service/config"
	"github.com/ProjectsTask/EasySwapItemView/service/eventsync"
	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/service/snapshotloader"
	"github.com/ProjectsTask/EasySwapItemView/service/svc"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

// viewPushPeriod 时钟推送周期；倒计时类字段按该粒度刷新
const viewPushPeriod = time.Second

// Service 聚合单个 Item 视图服务的全部组件
type Service struct {
	ctx    context.Context
	config *config.Config
	wg     *sync.WaitGroup

	kvStore     kv.Store
	chainClient *chainclient.EvmClient
	market      *marketclient.MarketClient
	state       *itemstate.State
	loader      *snapshotloader.Loader
	eventSync   *eventsync.Service
	orch        *actions.Orchestrator
	hub         *ws.Hub
	platform    *app.Platform
}

// New 初始化 Service 实例
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	// 1. 初始化 Redis KV 存储 (可缺省，缺省时集合/账户资料不走缓存)
	var kvStore kv.Store
	if cfg.Kv != nil && len(cfg.Kv.Redis) > 0 {
		var kvConf kv.KvConf
		for _, con := range cfg.Kv.Redis {
			kvConf = append(kvConf, cache.NodeConf{
				RedisConf: redis.RedisConf{
					Host: con.Host,
					Type: con.Type,
					Pass: con.Pass,
				},
				Weight: 2,
			})
		}
		kvStore = kv.NewStore(kvConf)
	}

	// 2. 校验跟踪身份；非法身份直接拒绝启动
	identity, err := types.NewItemIdentity(cfg.ItemCfg.CollectionAddress, cfg.ItemCfg.TokenID)
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse item identity")
	}

	// 3. 初始化链客户端
	chainClient, err := chainclient.New(cfg.ChainCfg.ID, cfg.AnkrCfg.HttpsUrl+cfg.AnkrCfg.ApiKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create evm client")
	}

	// 4. 初始化合约客户端 (私钥缺省时为只读模式)
	market, err := marketclient.New(chainClient, cfg.ContractCfg, cfg.ItemCfg.CollectionAddress, cfg.AccountCfg.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create market client")
	}

	// 5. 初始化实体状态与推送枢纽
	// 状态变化回调把最新视图推给所有 WebSocket 客户端
	hub := ws.NewHub()
	var state *itemstate.State
	spenderAddrs := map[types.Spender]string{
		types.SpenderMarketplace: market.SpenderAddress(types.SpenderMarketplace),
		types.SpenderAuction:     market.SpenderAddress(types.SpenderAuction),
	}
	state = itemstate.New(identity, cfg.AccountCfg.Address, spenderAddrs, func() {
		pushView(state, hub)
	})

	// 6. 初始化快照加载器与事件同步器
	queryClient := snapshotloader.NewClient(cfg.QueryCfg)
	loader := snapshotloader.New(queryClient, market, kvStore, cfg.AccountCfg.Address)

	eventSync, err := eventsync.New(ctx, state, loader, chainClient, cfg.ChainCfg.Name,
		cfg.ContractCfg.MarketplaceAddress, cfg.ContractCfg.AuctionAddress,
		cfg.ItemCfg.CollectionAddress, cfg.AccountCfg.Address)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create event sync service")
	}

	orch := actions.New(state, market)

	return &Service{
		ctx:         ctx,
		config:      cfg,
		wg:          &sync.WaitGroup{},
		kvStore:     kvStore,
		chainClient: chainClient,
		market:      market,
		state:       state,
		loader:      loader,
		eventSync:   eventSync,
		orch:        orch,
		hub:         hub,
	}, nil
}

// Start 启动服务
func (s *Service) Start() error {
	// 1. 推送枢纽先就位，快照安装产生的首帧不丢
	threading.GoSafe(func() {
		s.hub.Run(s.ctx)
	})

	// 2. 建立事件订阅；订阅失败则启动失败
	if err := s.eventSync.Start(); err != nil {
		return errors.Wrap(err, "failed on start event sync")
	}

	// 3. 异步加载全量快照；携带当前代数，身份切换后过期结果被丢弃
	gen := s.state.Generation()
	threading.GoSafe(func() {
		snap := s.loader.Load(s.ctx, s.state.Identity())
		if !s.state.InstallSnapshot(gen, snap) {
			xzap.WithContext(s.ctx).Warn("stale snapshot dropped", zap.Uint64("generation", gen))
			return
		}
		if views, err := s.loader.RecordView(s.ctx, s.state.Identity()); err == nil {
			s.state.SetViews(views)
		}
	})

	// 4. 时钟循环：倒计时与阶段推导依赖时间，周期性重推视图
	threading.GoSafe(func() {
		ticker := time.NewTicker(viewPushPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				s.eventSync.Stop()
				s.chainClient.Close()
				return
			case <-ticker.C:
				if s.hub.ClientCount() > 0 {
					pushView(s.state, s.hub)
				}
			}
		}
	})

	// 5. 启动 HTTP / WebSocket API
	svcCtx := svc.NewServerCtx(s.config, s.state, s.orch, s.loader, s.hub)
	r := router.NewRouter(svcCtx)
	platform, err := app.NewPlatform(s.config, r, svcCtx)
	if err != nil {
		return errors.Wrap(err, "failed on create platform")
	}
	s.platform = platform
	threading.GoSafe(platform.Start)

	return nil
}

// pushView 将当前时刻的完整视图序列化后广播
func pushView(state *itemstate.State, hub *ws.Hub) {
	data, err := json.Marshal(state.View(time.Now()))
	if err != nil {
		return
	}
	hub.Broadcast(data)
}
