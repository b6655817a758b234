package public

import (
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 下单商品项
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// ShippingAddressRequest 收货地址
type ShippingAddressRequest struct {
	FullName      string  `json:"full_name" binding:"required"`
	StreetAddress string  `json:"street_address" binding:"required"`
	City          string  `json:"city" binding:"required"`
	Commune       *string `json:"commune"`
	State         *string `json:"state"`
	PostalCode    string  `json:"postal_code" binding:"required"`
	Country       string  `json:"country" binding:"required"`
	Phone         *string `json:"phone"`
}

// CreateOrderRequest 游客下单请求
type CreateOrderRequest struct {
	Email           string                 `json:"email" binding:"required,email"`
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address" binding:"required"`
}

// CreateOrder 游客下单
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	addr := req.ShippingAddress
	order, err := h.OrderService.Create(c.Request.Context(), service.CreateOrderInput{
		CustomerEmail: req.Email,
		Items:         items,
		ShippingAddress: service.AddressInput{
			FullName:      addr.FullName,
			StreetAddress: addr.StreetAddress,
			City:          addr.City,
			Commune:       addr.Commune,
			State:         addr.State,
			PostalCode:    addr.PostalCode,
			Country:       addr.Country,
			Phone:         addr.Phone,
		},
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, order)
}
