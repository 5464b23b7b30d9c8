package svc

import (
	"github.com/ProjectsTask/EasySwapItemView/api/ws"
	"github.com/ProjectsTask/EasySwapItemView/service/actions"
	"github.com/ProjectsTask/EasySwapItemView/service/config"
	"github.com/ProjectsTask/EasySwapItemView/service/itemstate"
	"github.com/ProjectsTask/EasySwapItemView/service/snapshotloader"
)

// ServerCtx API 层的依赖容器
type ServerCtx struct {
	C            *config.Config
	State        *itemstate.State
	Orchestrator *actions.Orchestrator
	Loader       *snapshotloader.Loader
	Hub          *ws.Hub
}

// NewServerCtx 构造依赖容器
func NewServerCtx(c *config.Config, state *itemstate.State, orch *actions.Orchestrator,
	loader *snapshotloader.Loader, hub *ws.Hub) *ServerCtx {
	return &ServerCtx{
		C:            c,
		State:        state,
		Orchestrator: orch,
		Loader:       loader,
		Hub:          hub,
	}
}
