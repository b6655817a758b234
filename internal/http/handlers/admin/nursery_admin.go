package admin

import (
	"strings"

	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/repository"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// NurseryRequest 苗圃创建/更新请求
type NurseryRequest struct {
	InternalName *string          `json:"internal_name"`
	City         *string          `json:"city"`
	Commune      *string          `json:"commune"`
	Latitude     *decimal.Decimal `json:"latitude"`
	Longitude    *decimal.Decimal `json:"longitude"`
}

func (r NurseryRequest) toInput() service.NurseryInput {
	return service.NurseryInput{
		InternalName: r.InternalName,
		City:         r.City,
		Commune:      r.Commune,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
	}
}

// StockRequest 苗圃库存设置请求
type StockRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// ListNurseries 苗圃列表
func (h *Handler) ListNurseries(c *gin.Context) {
	nurseries, err := h.NurseryService.List(c.Request.Context(), repository.NurseryListFilter{
		City:   strings.TrimSpace(c.Query("city")),
		Search: strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nurseries)
}

// CreateNursery 创建苗圃
func (h *Handler) CreateNursery(c *gin.Context) {
	var req NurseryRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	nursery, err := h.NurseryService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, nursery)
}

// GetNursery 苗圃详情
func (h *Handler) GetNursery(c *gin.Context) {
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	nursery, err := h.NurseryService.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nursery)
}

// UpdateNursery 更新苗圃
func (h *Handler) UpdateNursery(c *gin.Context) {
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req NurseryRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	nursery, err := h.NurseryService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nursery)
}

// DeleteNursery 删除苗圃（级联清理库存台账并重算全局库存）
func (h *Handler) DeleteNursery(c *gin.Context) {
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	if err := h.NurseryService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// ListNurseryInventory 苗圃库存列表
func (h *Handler) ListNurseryInventory(c *gin.Context) {
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	rows, err := h.InventoryService.ListNurseryStock(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rows)
}

// UpsertNurseryInventory 设置苗圃商品库存
func (h *Handler) UpsertNurseryInventory(c *gin.Context) {
	nurseryID, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	productID, ok := handlershared.ParamUint(c, "product_id")
	if !ok {
		return
	}
	var req StockRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	row, err := h.InventoryService.UpsertNurseryStock(c.Request.Context(), nurseryID, productID, *req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, row)
}
