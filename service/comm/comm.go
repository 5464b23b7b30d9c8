package comm

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	// PriceDecimals 链上定点价格的统一精度；换算只在 delta 应用时发生一次
	PriceDecimals = 18

	HexPrefix   = "0x"
	ZeroAddress = "0x0000000000000000000000000000000000000000"

	// LegacyWithdrawDisplayWindow 旧版界面固定的出价撤回展示倒计时 (秒)
	// 与链上可配置的 bidWithdrawalLockTime 并存，二者的不一致被刻意保留
	LegacyWithdrawDisplayWindow int64 = 20 * 60
)

// ToDisplay 链上定点整数 -> 展示用十进制
func ToDisplay(v *big.Int) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -PriceDecimals)
}

// ToLedger 展示用十进制 -> 链上定点整数
func ToLedger(v decimal.Decimal) *big.Int {
	return v.Shift(PriceDecimals).BigInt()
}
