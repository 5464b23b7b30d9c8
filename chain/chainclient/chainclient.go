package chainclient

import (
	"context"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// ChainClient 引擎需要的链上读能力；写路径通过 Backend 走 bind.BoundContract
type ChainClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethereumTypes.Log, error)
	Backend() bind.ContractBackend
	Close()
}

// EvmClient 基于 ethclient 的实现
type EvmClient struct {
	chainID int64
	client  *ethclient.Client
}

// New 创建 EVM 链客户端
func New(chainID int64, rpcURL string) (*EvmClient, error) {
	cli, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed on dial rpc node")
	}

	return &EvmClient{
		chainID: chainID,
		client:  cli,
	}, nil
}

func (c *EvmClient) BlockNumber(ctx context.Context) (uint64, error) {
	return c.client.BlockNumber(ctx)
}

func (c *EvmClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethereumTypes.Log, error) {
	return c.client.FilterLogs(ctx, q)
}

// Backend 暴露给 bind.BoundContract 的合约后端
func (c *EvmClient) Backend() bind.ContractBackend {
	return c.client
}

// Raw 原始 ethclient，供等待交易确认等场景使用
func (c *EvmClient) Raw() *ethclient.Client {
	return c.client
}

func (c *EvmClient) ChainID() int64 {
	return c.chainID
}

func (c *EvmClient) Close() {
	c.client.Close()
}
