package errcode

import "fmt"

// Err 业务错误码
type Err struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

// NewErr 构造业务错误
func NewErr(code int, msg string) *Err {
	return &Err{Code: code, Msg: msg}
}

// NewCustomErr 业务自定义错误，统一挂在 CustomErrCode 下
func NewCustomErr(msg string) *Err {
	return NewErr(CustomErrCode, msg)
}

const (
	OkCode        = 200
	CustomErrCode = 2000
)

var (
	NoErr            = NewErr(OkCode, "success")
	ErrUnexpected    = NewErr(5000, "server unexpected error")
	ErrInvalidParams = NewErr(4000, "invalid params")
	ErrNotFound      = NewErr(4004, "resource not found")
	ErrActionBusy    = NewErr(4290, "action already in progress")
)
