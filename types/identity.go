package types

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// ItemIdentity 唯一标识一个市场 Item: 集合合约地址 + Token ID
// 引擎实例生命周期内不可变，所有事件过滤都以它为准
type ItemIdentity struct {
	CollectionAddress string `json:"collection_address"`
	TokenID           string `json:"token_id"`
}

// NewItemIdentity 校验并构造 Item 身份；非法输入直接失败，不做任何网络请求
func NewItemIdentity(collectionAddr string, tokenID string) (ItemIdentity, error) {
	if !common.IsHexAddress(collectionAddr) {
		return ItemIdentity{}, errors.Wrapf(ErrInvalidIdentity, "bad collection address: %s", collectionAddr)
	}
	if _, ok := new(big.Int).SetString(strings.TrimSpace(tokenID), 10); !ok {
		return ItemIdentity{}, errors.Wrapf(ErrInvalidIdentity, "bad token id: %s", tokenID)
	}

	return ItemIdentity{
		CollectionAddress: collectionAddr,
		TokenID:           strings.TrimSpace(tokenID),
	}, nil
}

// Matches 判断事件中的 (合约地址, tokenId) 是否指向本 Item
// 地址比较忽略大小写；tokenId 做数值比较，兼容不同事件源的字符串/数字表示
func (i ItemIdentity) Matches(contractAddr string, tokenID string) bool {
	if !strings.EqualFold(i.CollectionAddress, contractAddr) {
		return false
	}

	want, ok1 := new(big.Int).SetString(i.TokenID, 10)
	got, ok2 := new(big.Int).SetString(strings.TrimSpace(tokenID), 10)
	if !ok1 || !ok2 {
		return false
	}
	return want.Cmp(got) == 0
}

// MatchesBig 同 Matches，事件源直接给出 *big.Int 时使用
func (i ItemIdentity) MatchesBig(contractAddr string, tokenID *big.Int) bool {
	if tokenID == nil {
		return false
	}
	return i.Matches(contractAddr, tokenID.String())
}

// TokenIDBig 返回 token id 的数值形式
func (i ItemIdentity) TokenIDBig() *big.Int {
	v, _ := new(big.Int).SetString(i.TokenID, 10)
	return v
}
