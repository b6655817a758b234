package admin

import (
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"

	"github.com/gin-gonic/gin"
)

// SetAdminRolesRequest 设置管理员角色请求
type SetAdminRolesRequest struct {
	Roles []string `json:"roles" binding:"required"`
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, roles)
}

// GetAuthzAdminRoles 查询管理员角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	response.Success(c, gin.H{"admin_id": adminID, "roles": roles})
}

// SetAuthzAdminRoles 覆盖设置管理员角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	adminID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req SetAdminRolesRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	if _, err := h.AuthService.GetAdmin(adminID); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal_error", err)
		return
	}
	requestLog(c).Infow("admin_roles_updated", "operator_id", operatorID, "admin_id", adminID, "roles", roles)
	response.Success(c, gin.H{"admin_id": adminID, "roles": roles})
}
