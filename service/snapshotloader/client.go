package snapshotloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapItemView/service/config"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

// errNotFound 查询服务明确表示该字段不存在 (404)；调用方据此降级为缺失而非报错
var errNotFound = errors.New("not found")

// Client 查询服务的 HTTP 客户端
type Client struct {
	baseUrl string
	httpCli *http.Client
}

// NewClient 构造查询服务客户端
func NewClient(cfg config.QueryCfg) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseUrl: cfg.BaseUrl,
		httpCli: &http.Client{Timeout: timeout},
	}
}

// dataEnvelope 查询服务统一响应格式
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed on build request")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return errors.Wrapf(types.ErrTransport, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(types.ErrTransport, "%s %s: status %d", method, path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(types.ErrTransport, "%s %s: read body: %v", method, path, err)
	}

	var envelope dataEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errors.Wrapf(types.ErrTransport, "%s %s: bad envelope: %v", method, path, err)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrapf(types.ErrTransport, "%s %s: bad payload: %v", method, path, err)
		}
	}
	return nil
}

func (c *Client) itemPath(id types.ItemIdentity, suffix string) string {
	return fmt.Sprintf("/api/v1/items/%s/%s/%s", id.CollectionAddress, id.TokenID, suffix)
}

// GetListing 当前挂单；无挂单返回 (nil, nil)
func (c *Client) GetListing(ctx context.Context, id types.ItemIdentity) (*types.Listing, error) {
	var listing types.Listing
	if err := c.do(ctx, http.MethodGet, c.itemPath(id, "listing"), &listing); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// GetOffers 全量报价
func (c *Client) GetOffers(ctx context.Context, id types.ItemIdentity) ([]types.Offer, error) {
	var offers []types.Offer
	if err := c.do(ctx, http.MethodGet, c.itemPath(id, "offers"), &offers); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return offers, nil
}

// GetTradeHistory 成交历史
func (c *Client) GetTradeHistory(ctx context.Context, id types.ItemIdentity) ([]types.TradeHistoryEntry, error) {
	var trades []types.TradeHistoryEntry
	if err := c.do(ctx, http.MethodGet, c.itemPath(id, "trade-history"), &trades); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return trades, nil
}

// GetAuction 当前拍卖；endTime 为 0 或 404 均视为不存在
func (c *Client) GetAuction(ctx context.Context, id types.ItemIdentity) (*types.Auction, error) {
	var auction types.Auction
	if err := c.do(ctx, http.MethodGet, c.itemPath(id, "auction"), &auction); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if auction.EndTime == 0 {
		return nil, nil
	}
	return &auction, nil
}

// highestBidPayload 查询服务的最高出价响应
type highestBidPayload struct {
	Bidder      string          `json:"bidder"`
	Amount      decimal.Decimal `json:"amount"`
	LastBidTime int64           `json:"last_bid_time"`
}

// GetHighestBid 当前最高出价；金额为 0 或 404 视为不存在
func (c *Client) GetHighestBid(ctx context.Context, id types.ItemIdentity) (*types.Bid, error) {
	var payload highestBidPayload
	if err := c.do(ctx, http.MethodGet, c.itemPath(id, "highest-bid"), &payload); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if payload.Amount.IsZero() {
		return nil, nil
	}
	return &types.Bid{
		Bidder:      payload.Bidder,
		Amount:      payload.Amount,
		LastBidTime: payload.LastBidTime,
	}, nil
}

// GetMetadata token URI 元数据
func (c *Client) GetMetadata(ctx context.Context, id types.ItemIdentity) (*types.ItemMetadata, error) {
	var meta types.ItemMetadata
	if err := c.do(ctx, http.MethodGet, c.itemPath(id, "metadata"), &meta); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}

// tokenKindPayload token 标准与持有人信息
type tokenKindPayload struct {
	TokenKind   int64 `json:"token_kind"`
	Holders     int64 `json:"holders"`
	TotalSupply int64 `json:"total_supply"`
}

// GetTokenKind token 标准 (721/1155)；1155 同时返回持有人统计
func (c *Client) GetTokenKind(ctx context.Context, id types.ItemIdentity) (int64, *types.HolderInfo, error) {
	var payload tokenKindPayload
	if err := c.do(ctx, http.MethodGet, c.itemPath(id, "token-kind"), &payload); err != nil {
		return 0, nil, err
	}
	if payload.TokenKind == types.TokenKind1155 {
		return payload.TokenKind, &types.HolderInfo{
			Holders:     payload.Holders,
			TotalSupply: payload.TotalSupply,
		}, nil
	}
	return payload.TokenKind, nil, nil
}

// GetCollectionMeta 集合元数据
func (c *Client) GetCollectionMeta(ctx context.Context, collectionAddr string) (*types.CollectionMeta, error) {
	var meta types.CollectionMeta
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections/"+collectionAddr, &meta); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meta, nil
}

// GetAccountProfile 账户资料
func (c *Client) GetAccountProfile(ctx context.Context, addr string) (*types.AccountProfile, error) {
	var profile types.AccountProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+addr, &profile); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// RecordView 上报一次浏览，返回最新计数
func (c *Client) RecordView(ctx context.Context, id types.ItemIdentity) (int64, error) {
	var views int64
	if err := c.do(ctx, http.MethodPost, c.itemPath(id, "views"), &views); err != nil {
		return 0, err
	}
	return views, nil
}
