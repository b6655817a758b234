package admin

import (
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
)

// DeliveryContactRequest 履约单配送联系人请求
type DeliveryContactRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone string  `json:"phone" binding:"required"`
	Notes *string `json:"notes"`
}

// SetDeliveryContact 设置履约单配送联系人
func (h *Handler) SetDeliveryContact(c *gin.Context) {
	fulfillmentID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req DeliveryContactRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	view, err := h.FulfillmentService.SetDeliveryContact(c.Request.Context(), fulfillmentID, service.DeliveryContactInput{
		Name:  req.Name,
		Phone: req.Phone,
		Notes: req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}
