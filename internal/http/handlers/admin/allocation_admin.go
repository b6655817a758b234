package admin

import (
	"github.com/flower-vendor/internal/constants"
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
)

// AllocateRequest 提交分配方案请求
type AllocateRequest struct {
	Allocations []service.AllocationInput `json:"allocations" binding:"required"`
}

// GetAllocationSuggestions 获取订单的苗圃分配建议
func (h *Handler) GetAllocationSuggestions(c *gin.Context) {
	orderID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	suggestions, err := h.AllocationService.Suggest(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, suggestions)
}

// AllocateOrder 提交分配方案，替换订单现有的待确认履约单
func (h *Handler) AllocateOrder(c *gin.Context) {
	orderID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req AllocateRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	fulfillments, err := h.AllocationService.Commit(c.Request.Context(), orderID, req.Allocations)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, fulfillments)
}

// ConfirmAllocation 确认分配：扣减苗圃库存并将订单置为已确认
func (h *Handler) ConfirmAllocation(c *gin.Context) {
	orderID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	order, err := h.FulfillmentService.Confirm(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if adminID, exists := c.Get(constants.ContextKeyAdminID); exists {
		requestLog(c).Infow("admin_allocation_confirmed", "admin_id", adminID, "order_id", orderID)
	}
	response.Success(c, order)
}
