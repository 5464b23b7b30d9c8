package marketclient

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethereumTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapItemView/chain/chainclient"
	"github.com/ProjectsTask/EasySwapItemView/service/config"
	"github.com/ProjectsTask/EasySwapItemView/types"
)

// MarketClient 封装市场/拍卖行/集合/支付代币四个合约的读写
// 未配置私钥时处于只读模式，所有写方法返回 ErrReadOnly
type MarketClient struct {
	cli *chainclient.EvmClient

	marketplaceAddr common.Address
	auctionAddr     common.Address
	tokenAddr       common.Address
	payTokenAddr    common.Address

	marketplace *bind.BoundContract
	auction     *bind.BoundContract
	token       *bind.BoundContract
	payToken    *bind.BoundContract

	auth *bind.TransactOpts
}

// New 构造 MarketClient
func New(cli *chainclient.EvmClient, contracts config.ContractCfg, collectionAddr string, privateKeyHex string) (*MarketClient, error) {
	marketplaceAbi, err := abi.JSON(strings.NewReader(MarketplaceABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse marketplace abi")
	}
	auctionAbi, err := abi.JSON(strings.NewReader(AuctionABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse auction abi")
	}
	tokenAbi, err := abi.JSON(strings.NewReader(TokenABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse token abi")
	}
	payTokenAbi, err := abi.JSON(strings.NewReader(PayTokenABIJSON))
	if err != nil {
		return nil, errors.Wrap(err, "failed on parse pay token abi")
	}

	c := &MarketClient{
		cli:             cli,
		marketplaceAddr: common.HexToAddress(contracts.MarketplaceAddress),
		auctionAddr:     common.HexToAddress(contracts.AuctionAddress),
		tokenAddr:       common.HexToAddress(collectionAddr),
		payTokenAddr:    common.HexToAddress(contracts.WrappedTokenAddress),
	}

	backend := cli.Backend()
	c.marketplace = bind.NewBoundContract(c.marketplaceAddr, marketplaceAbi, backend, backend, backend)
	c.auction = bind.NewBoundContract(c.auctionAddr, auctionAbi, backend, backend, backend)
	c.token = bind.NewBoundContract(c.tokenAddr, tokenAbi, backend, backend, backend)
	c.payToken = bind.NewBoundContract(c.payTokenAddr, payTokenAbi, backend, backend, backend)

	if privateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "failed on parse signing key")
		}
		auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cli.ChainID()))
		if err != nil {
			return nil, errors.Wrap(err, "failed on create transactor")
		}
		c.auth = auth
	}

	return c, nil
}

// PayTokenAddress 支付代币合约地址
func (c *MarketClient) PayTokenAddress() string {
	return c.payTokenAddr.Hex()
}

// SpenderAddress 授权对象对应的合约地址
func (c *MarketClient) SpenderAddress(spender types.Spender) string {
	if spender == types.SpenderAuction {
		return c.auctionAddr.Hex()
	}
	return c.marketplaceAddr.Hex()
}

func (c *MarketClient) spenderAddr(spender types.Spender) common.Address {
	if spender == types.SpenderAuction {
		return c.auctionAddr
	}
	return c.marketplaceAddr
}

func (c *MarketClient) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	if c.auth == nil {
		return nil, types.ErrReadOnly
	}
	opts := *c.auth
	opts.Context = ctx
	opts.Value = value
	return &opts, nil
}

// ---- 读 ----

func (c *MarketClient) IsApprovedForAll(ctx context.Context, owner string, spender types.Spender) (bool, error) {
	var out []interface{}
	err := c.token.Call(&bind.CallOpts{Context: ctx}, &out, "isApprovedForAll",
		common.HexToAddress(owner), c.spenderAddr(spender))
	if err != nil {
		return false, errors.Wrap(err, "failed on call isApprovedForAll")
	}
	return out[0].(bool), nil
}

func (c *MarketClient) OwnerOf(ctx context.Context, tokenID *big.Int) (string, error) {
	var out []interface{}
	if err := c.token.Call(&bind.CallOpts{Context: ctx}, &out, "ownerOf", tokenID); err != nil {
		return "", errors.Wrap(err, "failed on call ownerOf")
	}
	return out[0].(common.Address).Hex(), nil
}

func (c *MarketClient) PayTokenBalance(ctx context.Context, owner string) (*big.Int, error) {
	var out []interface{}
	if err := c.payToken.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(owner)); err != nil {
		return nil, errors.Wrap(err, "failed on call balanceOf")
	}
	return out[0].(*big.Int), nil
}

func (c *MarketClient) PayTokenAllowance(ctx context.Context, owner string, spender types.Spender) (*big.Int, error) {
	var out []interface{}
	err := c.payToken.Call(&bind.CallOpts{Context: ctx}, &out, "allowance",
		common.HexToAddress(owner), c.spenderAddr(spender))
	if err != nil {
		return nil, errors.Wrap(err, "failed on call allowance")
	}
	return out[0].(*big.Int), nil
}

func (c *MarketClient) MinBidIncrement(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.auction.Call(&bind.CallOpts{Context: ctx}, &out, "minBidIncrement"); err != nil {
		return nil, errors.Wrap(err, "failed on call minBidIncrement")
	}
	return out[0].(*big.Int), nil
}

func (c *MarketClient) BidWithdrawalLockTime(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.auction.Call(&bind.CallOpts{Context: ctx}, &out, "bidWithdrawalLockTime"); err != nil {
		return nil, errors.Wrap(err, "failed on call bidWithdrawalLockTime")
	}
	return out[0].(*big.Int), nil
}

// ---- 写 ----

func (c *MarketClient) ListItem(ctx context.Context, tokenID *big.Int, quantity *big.Int, pricePerItem *big.Int, startingTime *big.Int, allowedAddress string) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.marketplace.Transact(opts, "listItem", c.tokenAddr, tokenID, quantity, pricePerItem, startingTime, common.HexToAddress(allowedAddress))
}

func (c *MarketClient) UpdateListing(ctx context.Context, tokenID *big.Int, newPrice *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.marketplace.Transact(opts, "updateListing", c.tokenAddr, tokenID, newPrice)
}

func (c *MarketClient) CancelListing(ctx context.Context, tokenID *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.marketplace.Transact(opts, "cancelListing", c.tokenAddr, tokenID)
}

func (c *MarketClient) BuyItem(ctx context.Context, tokenID *big.Int, price *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, price)
	if err != nil {
		return nil, err
	}
	return c.marketplace.Transact(opts, "buyItem", c.tokenAddr, tokenID)
}

func (c *MarketClient) CreateOffer(ctx context.Context, tokenID *big.Int, quantity *big.Int, pricePerItem *big.Int, deadline *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.marketplace.Transact(opts, "createOffer", c.tokenAddr, tokenID, c.payTokenAddr, quantity, pricePerItem, deadline)
}

func (c *MarketClient) CancelOffer(ctx context.Context, tokenID *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.marketplace.Transact(opts, "cancelOffer", c.tokenAddr, tokenID)
}

func (c *MarketClient) AcceptOffer(ctx context.Context, tokenID *big.Int, creator string) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.marketplace.Transact(opts, "acceptOffer", c.tokenAddr, tokenID, common.HexToAddress(creator))
}

func (c *MarketClient) CreateAuction(ctx context.Context, tokenID *big.Int, reservePrice *big.Int, startTime *big.Int, endTime *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "createAuction", c.tokenAddr, tokenID, reservePrice, startTime, endTime)
}

func (c *MarketClient) UpdateAuctionStartTime(ctx context.Context, tokenID *big.Int, startTime *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "updateAuctionStartTime", c.tokenAddr, tokenID, startTime)
}

func (c *MarketClient) UpdateAuctionEndTime(ctx context.Context, tokenID *big.Int, endTime *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "updateAuctionEndTime", c.tokenAddr, tokenID, endTime)
}

func (c *MarketClient) UpdateAuctionReservePrice(ctx context.Context, tokenID *big.Int, reservePrice *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "updateAuctionReservePrice", c.tokenAddr, tokenID, reservePrice)
}

func (c *MarketClient) CancelAuction(ctx context.Context, tokenID *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "cancelAuction", c.tokenAddr, tokenID)
}

func (c *MarketClient) ResultAuction(ctx context.Context, tokenID *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "resultAuction", c.tokenAddr, tokenID)
}

func (c *MarketClient) PlaceBid(ctx context.Context, tokenID *big.Int, amount *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, amount)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "placeBid", c.tokenAddr, tokenID)
}

func (c *MarketClient) WithdrawBid(ctx context.Context, tokenID *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.auction.Transact(opts, "withdrawBid", c.tokenAddr, tokenID)
}

func (c *MarketClient) SetApprovalForAll(ctx context.Context, spender types.Spender, approved bool) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.token.Transact(opts, "setApprovalForAll", c.spenderAddr(spender), approved)
}

func (c *MarketClient) ApprovePayToken(ctx context.Context, spender types.Spender, amount *big.Int) (*ethereumTypes.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}
	return c.payToken.Transact(opts, "approve", c.spenderAddr(spender), amount)
}

// WaitMined 阻塞等待交易上链；revert 视为 ErrLedgerCall，ctx 截止视为确认超时
func (c *MarketClient) WaitMined(ctx context.Context, tx *ethereumTypes.Transaction) error {
	receipt, err := bind.WaitMined(ctx, c.cli.Raw(), tx)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(types.ErrConfirmationTimeout, err.Error())
		}
		return errors.Wrap(err, "failed on wait mined")
	}
	if receipt.Status != ethereumTypes.ReceiptStatusSuccessful {
		return errors.Wrapf(types.ErrLedgerCall, "tx reverted: %s", tx.Hash().Hex())
	}
	return nil
}
