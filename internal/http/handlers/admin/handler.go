package admin

import "github.com/flower-vendor/internal/provider"

// Handler 后台管理接口处理器入口
// 说明：该处理器仅用于管理端 API，核心分配路由与 /api/v1 路由共用同一实例。
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
