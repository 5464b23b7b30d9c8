package types

import "github.com/pkg/errors"

// 引擎内的错误分类；除 ErrInvalidIdentity 外均为局部可恢复错误
var (
	// ErrInvalidIdentity 身份入参非法，在任何抓取/订阅前快速失败
	ErrInvalidIdentity = errors.New("invalid item identity")

	// ErrTransport 查询服务不可达或返回非 2xx；对应字段降级为缺失，不影响其余抓取
	ErrTransport = errors.New("query service transport error")

	// ErrLedgerCall 合约调用 revert 或钱包拒绝；动作失败，不改动本地状态
	ErrLedgerCall = errors.New("ledger call failed")

	// ErrConfirmationTimeout 等待交易确认超时；处理方式与 ErrLedgerCall 相同，不自动重试
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")

	// ErrSubscription 事件监听建立/拆除失败；仅记录，下个身份周期重试
	ErrSubscription = errors.New("event subscription error")

	// ErrActionInProgress 同类动作已在执行，本次调用为空操作
	ErrActionInProgress = errors.New("action already in progress")

	// ErrReadOnly 未配置签名私钥，所有写操作被拒绝
	ErrReadOnly = errors.New("no signing key configured")

	// ErrNoListing / ErrNoAuction 动作前置条件不满足
	ErrNoListing = errors.New("no active listing")
	ErrNoAuction = errors.New("no active auction")

	// ErrInsufficientBalance 报价余额不足
	ErrInsufficientBalance = errors.New("insufficient pay token balance")
)
