package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapItemView/logger/xzap"
	"github.com/ProjectsTask/EasySwapItemView/service/config"
	"github.com/ProjectsTask/EasySwapItemView/service/svc"
)

// Platform 应用容器，持有配置、路由与依赖上下文
type Platform struct {
	config    *config.Config
	router    *gin.Engine
	serverCtx *svc.ServerCtx
}

// NewPlatform 创建 Platform 实例
func NewPlatform(config *config.Config, router *gin.Engine, serverCtx *svc.ServerCtx) (*Platform, error) {
	return &Platform{
		config:    config,
		router:    router,
		serverCtx: serverCtx,
	}, nil
}

// Start 启动 HTTP 服务，阻塞监听配置端口
func (p *Platform) Start() {
	xzap.WithContext(context.Background()).Info("item view api run", zap.String("port", p.config.Api.Port))
	if err := p.router.Run(p.config.Api.Port); err != nil {
		panic(err)
	}
}
