package admin

import (
	"errors"
	"time"

	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 管理员登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 管理员登录返回
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      AdminInfo `json:"user"`
}

// AdminInfo 管理员基础信息
type AdminInfo struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	IsSuper  bool     `json:"is_super"`
	Roles    []string `json:"roles"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "error.login_failed", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}

	requestLog(c).Infow("admin_login_success", "admin_id", admin.ID, "username", admin.Username)
	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      h.buildAdminInfo(c, admin.ID, admin.Username, admin.IsSuper),
	})
}

// GetAdminMe 获取当前管理员信息
func (h *Handler) GetAdminMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AuthService.GetAdmin(adminID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, h.buildAdminInfo(c, admin.ID, admin.Username, admin.IsSuper))
}

func (h *Handler) buildAdminInfo(c *gin.Context, id uint, username string, isSuper bool) AdminInfo {
	info := AdminInfo{ID: id, Username: username, IsSuper: isSuper, Roles: []string{}}
	if h.AuthzService == nil {
		return info
	}
	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		requestLog(c).Warnw("admin_roles_fetch_failed", "admin_id", id, "error", err)
		return info
	}
	info.Roles = roles
	return info
}
