package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/ProjectsTask/EasySwapItemView/api/v1"
	"github.com/ProjectsTask/EasySwapItemView/service/svc"
)

// loadV1 注册 v1 版本路由
func loadV1(r *gin.Engine, svcCtx *svc.ServerCtx) {
	api := r.Group("/api/v1")
	api.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	item := api.Group("/item")
	item.GET("/view", v1.ItemViewHandler(svcCtx))
	item.GET("/live", v1.LiveHandler(svcCtx))
	item.POST("/actions/:action", v1.ActionHandler(svcCtx))
}
