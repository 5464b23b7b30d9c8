package itemstate

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapItemView/types"
)

// Snapshot 一次性读出的全部实体状态；各字段独立可缺失
type Snapshot struct {
	Listing      *types.Listing
	Offers       []types.Offer
	Auction      *types.Auction
	Bid          *types.Bid
	TradeHistory []types.TradeHistoryEntry

	Owner        string
	OwnerProfile *types.AccountProfile
	TokenKind    int64
	HolderInfo   *types.HolderInfo
	Collection   *types.CollectionMeta
	Metadata     *types.ItemMetadata
	Views        int64

	MinBidIncrement  decimal.Decimal
	WithdrawLockTime int64

	Approvals map[types.Spender]bool
}

// State 单个 Item 的内存实体状态
// 源系统是单线程事件循环；这里用一把互斥锁承担同样的角色：
// 事件同步器的 delta、编排器的乐观更新、快照安装与时钟读取全部经由它串行化
type State struct {
	mu sync.RWMutex

	identity types.ItemIdentity
	account  string
	gen      uint64 // 快照代数，身份切换时自增，用于丢弃过期的在途快照

	listing *types.Listing
	offers  []types.Offer
	auction *types.Auction
	bid     *types.Bid
	trades  []types.TradeHistoryEntry
	// 已入账的成交，按 tx hash (或退化键) 去重，保证 ItemSold 的幂等追加
	seenSales map[string]struct{}

	owner        string
	ownerProfile *types.AccountProfile
	tokenKind    int64
	holderInfo   *types.HolderInfo
	collection   *types.CollectionMeta
	metadata     *types.ItemMetadata
	views        int64

	minBidIncrement  decimal.Decimal
	withdrawLockTime int64

	approvals    map[types.Spender]types.ApprovalState
	spenderAddrs map[types.Spender]string

	// locallyResulted: 编排器提交 resultAuction 成功后、确认事件到达前的本地标记
	locallyResulted bool
	// cancelled: 拍卖被取消后实体已清空，靠该标记维持终态阶段
	cancelled bool

	onChange func()
}

// New 构造状态容器
// spenderAddrs 用于把 ApprovalForAll 事件中的 operator 地址路由到对应的授权状态机
func New(identity types.ItemIdentity, account string, spenderAddrs map[types.Spender]string, onChange func()) *State {
	if onChange == nil {
		onChange = func() {}
	}
	return &State{
		identity:  identity,
		account:   account,
		seenSales: make(map[string]struct{}),
		approvals: map[types.Spender]types.ApprovalState{
			types.SpenderMarketplace: types.ApprovalUnapproved,
			types.SpenderAuction:     types.ApprovalUnapproved,
		},
		spenderAddrs: spenderAddrs,
		onChange:     onChange,
	}
}

// Identity 当前跟踪的身份
func (s *State) Identity() types.ItemIdentity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Account 当前连接账户
func (s *State) Account() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Generation 当前快照代数
func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// ResetIdentity 切换跟踪身份：清空全部实体并递增代数
// 返回新代数，供随后发起的快照加载携带
func (s *State) ResetIdentity(identity types.ItemIdentity) uint64 {
	s.mu.Lock()
	s.identity = identity
	s.gen++
	s.listing = nil
	s.offers = nil
	s.auction = nil
	s.bid = nil
	s.trades = nil
	s.seenSales = make(map[string]struct{})
	s.owner = ""
	s.ownerProfile = nil
	s.tokenKind = 0
	s.holderInfo = nil
	s.collection = nil
	s.metadata = nil
	s.views = 0
	s.locallyResulted = false
	s.cancelled = false
	gen := s.gen
	s.mu.Unlock()

	s.onChange()
	return gen
}

// InstallSnapshot 安装快照；代数不匹配说明身份已切换，本次结果直接丢弃
func (s *State) InstallSnapshot(gen uint64, snap Snapshot) bool {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return false
	}

	s.listing = snap.Listing
	s.offers = append([]types.Offer(nil), snap.Offers...)
	s.auction = snap.Auction
	s.bid = snap.Bid
	s.trades = append([]types.TradeHistoryEntry(nil), snap.TradeHistory...)
	s.owner = snap.Owner
	s.ownerProfile = snap.OwnerProfile
	s.tokenKind = snap.TokenKind
	s.holderInfo = snap.HolderInfo
	s.collection = snap.Collection
	s.metadata = snap.Metadata
	s.views = snap.Views
	if !snap.MinBidIncrement.IsZero() {
		s.minBidIncrement = snap.MinBidIncrement
	}
	if snap.WithdrawLockTime > 0 {
		s.withdrawLockTime = snap.WithdrawLockTime
	}
	for spender, approved := range snap.Approvals {
		if approved {
			s.approvals[spender] = types.ApprovalApproved
		} else if s.approvals[spender] != types.ApprovalApproving {
			s.approvals[spender] = types.ApprovalUnapproved
		}
	}
	s.mu.Unlock()

	s.onChange()
	return true
}

// Listing 当前挂单 (副本)
func (s *State) Listing() *types.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listing == nil {
		return nil
	}
	l := *s.listing
	return &l
}

// Auction 当前拍卖 (副本)
func (s *State) Auction() *types.Auction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auction == nil {
		return nil
	}
	a := *s.auction
	return &a
}

// HighestBid 当前最高出价 (副本)
func (s *State) HighestBid() *types.Bid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bid == nil {
		return nil
	}
	b := *s.bid
	return &b
}

// Offers 全量报价 (含已过期，过滤发生在读侧投影)
func (s *State) Offers() []types.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Offer(nil), s.offers...)
}

// OfferOf 指定 creator 的报价
func (s *State) OfferOf(creator string) *types.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.offers {
		if strings.EqualFold(s.offers[i].Creator, creator) {
			o := s.offers[i]
			return &o
		}
	}
	return nil
}

// Owner 当前持有人
func (s *State) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Approval 指定 spender 的授权状态
func (s *State) Approval(spender types.Spender) types.ApprovalState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvals[spender]
}

// MinBidIncrement 全局最小加价步长 (展示单位)
func (s *State) MinBidIncrement() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minBidIncrement
}

// WithdrawLockTime 链上出价撤回锁定期 (秒)
func (s *State) WithdrawLockTime() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withdrawLockTime
}

// SetViews 更新浏览计数 (查询服务 recordView 的返回值)
func (s *State) SetViews(views int64) {
	s.mu.Lock()
	s.views = views
	s.mu.Unlock()
	s.onChange()
}
