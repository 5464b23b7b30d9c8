package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ProjectsTask/EasySwapItemView/errcode"
	"github.com/ProjectsTask/EasySwapItemView/kit/validator"
	"github.com/ProjectsTask/EasySwapItemView/service/actions"
	"github.com/ProjectsTask/EasySwapItemView/service/svc"
	"github.com/ProjectsTask/EasySwapItemView/types"
	"github.com/ProjectsTask/EasySwapItemView/xhttp"
)

// ItemViewHandler 返回当前时刻的完整 Item 视图
// 视图由实体状态 + 时钟纯推导，同一状态下重复请求结果一致
func ItemViewHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := svcCtx.State.View(time.Now())
		xhttp.OkJson(c, view)
	}
}

// LiveHandler 升级为 WebSocket，接入实时视图推送流
func LiveHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		svcCtx.Hub.HandleWS(c.Writer, c.Request)
	}
}

// ActionParams 动作请求参数；不同动作各取所需字段
// 地址类字段格式统一由 validator 校验，是否必填由各动作分支决定
type ActionParams struct {
	Quantity       int64  `json:"quantity" validate:"gte=0"`
	Price          string `json:"price"`
	StartingTime   int64  `json:"starting_time"`
	AllowedAddress string `json:"allowed_address" validate:"omitempty,address"`
	Deadline       int64  `json:"deadline"`
	Creator        string `json:"creator" validate:"omitempty,address"`
	ReservePrice   string `json:"reserve_price"`
	StartTime      *int64 `json:"start_time"`
	EndTime        *int64 `json:"end_time"`
	Amount         string `json:"amount"`
	Spender        string `json:"spender" validate:"omitempty,oneof=marketplace auction"`
}

// ActionResult 动作回执
type ActionResult struct {
	ReceiptID string `json:"receipt_id"`
}

// ActionHandler 触发链上动作
// 动作在途期间重复触发返回 busy，不会产生第二笔交易
func ActionHandler(svcCtx *svc.ServerCtx) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 解析动作名与参数
		action := c.Param("action")
		var params ActionParams
		if err := c.ShouldBindJSON(&params); err != nil && err.Error() != "EOF" {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		// 2. 参数基本校验 (Validator)
		if err := validator.Verify(&params); err != nil {
			xhttp.Error(c, errcode.ErrInvalidParams)
			return
		}

		// 3. 分发到编排器
		receiptID, err := dispatchAction(c, svcCtx, action, params)
		if err != nil {
			xhttp.Error(c, mapActionErr(err))
			return
		}

		// 4. 返回回执
		xhttp.OkJson(c, ActionResult{ReceiptID: receiptID})
	}
}

func dispatchAction(c *gin.Context, svcCtx *svc.ServerCtx, action string, params ActionParams) (string, error) {
	ctx := c.Request.Context()
	orch := svcCtx.Orchestrator

	switch action {
	case actions.ActionListItem:
		price, err := decimal.NewFromString(params.Price)
		if err != nil {
			return "", errcode.ErrInvalidParams
		}
		return orch.ListItem(ctx, params.Quantity, price, params.StartingTime, params.AllowedAddress)
	case actions.ActionUpdatePrice:
		price, err := decimal.NewFromString(params.Price)
		if err != nil {
			return "", errcode.ErrInvalidParams
		}
		return orch.UpdatePrice(ctx, price)
	case actions.ActionCancelListing:
		return orch.CancelListing(ctx)
	case actions.ActionBuy:
		return orch.Buy(ctx)
	case actions.ActionCreateOffer:
		price, err := decimal.NewFromString(params.Price)
		if err != nil {
			return "", errcode.ErrInvalidParams
		}
		return orch.CreateOffer(ctx, price, params.Quantity, params.Deadline)
	case actions.ActionCancelOffer:
		return orch.CancelOffer(ctx)
	case actions.ActionAcceptOffer:
		if params.Creator == "" {
			return "", errcode.ErrInvalidParams
		}
		return orch.AcceptOffer(ctx, params.Creator)
	case actions.ActionCreateAuction:
		reserve, err := decimal.NewFromString(params.ReservePrice)
		if err != nil || params.StartTime == nil || params.EndTime == nil {
			return "", errcode.ErrInvalidParams
		}
		return orch.CreateAuction(ctx, reserve, *params.StartTime, *params.EndTime)
	case actions.ActionUpdateAuction:
		upd := actions.AuctionUpdate{
			StartTime: params.StartTime,
			EndTime:   params.EndTime,
		}
		if params.ReservePrice != "" {
			reserve, err := decimal.NewFromString(params.ReservePrice)
			if err != nil {
				return "", errcode.ErrInvalidParams
			}
			upd.ReservePrice = &reserve
		}
		return orch.UpdateAuction(ctx, upd)
	case actions.ActionCancelAuction:
		return orch.CancelAuction(ctx)
	case actions.ActionResultAuction:
		return orch.ResultAuction(ctx)
	case actions.ActionPlaceBid:
		amount, err := decimal.NewFromString(params.Amount)
		if err != nil {
			return "", errcode.ErrInvalidParams
		}
		return orch.PlaceBid(ctx, amount)
	case actions.ActionWithdrawBid:
		return orch.WithdrawBid(ctx)
	case actions.ActionApproveSpender:
		spender := types.Spender(params.Spender)
		if spender != types.SpenderMarketplace && spender != types.SpenderAuction {
			return "", errcode.ErrInvalidParams
		}
		return orch.Approve(ctx, spender)
	default:
		return "", errcode.ErrNotFound
	}
}

// mapActionErr 把内部哨兵错误映射为业务错误码
func mapActionErr(err error) error {
	e := &errcode.Err{}
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, types.ErrActionInProgress) {
		return errcode.ErrActionBusy
	}
	return errcode.NewCustomErr(err.Error())
}
