package xhttp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapItemView/errcode"
)

// Response 统一响应包装
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// OkJson 成功响应
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: errcode.OkCode,
		Msg:  "success",
		Data: data,
	})
}

// Error 错误响应；非业务错误统一折叠为 ErrUnexpected
func Error(c *gin.Context, err error) {
	e := &errcode.Err{}
	if !errors.As(err, &e) {
		e = errcode.NewCustomErr(err.Error())
	}
	c.Header("X-GW-Error-Code", strconv.Itoa(e.Code))
	c.Header("X-GW-Error-Message", e.Msg)
	c.JSON(http.StatusOK, Response{Code: e.Code, Msg: e.Msg})
}
