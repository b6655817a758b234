package admin

import (
	"strconv"
	"strings"

	"github.com/flower-vendor/internal/cache"
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/repository"
	"github.com/flower-vendor/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductAttributesRequest 商品属性请求
type ProductAttributesRequest struct {
	PlantEnvironment *string `json:"plant_environment"`
	Size             *string `json:"size"`
	Color            *string `json:"color"`
	CareInstructions *string `json:"care_instructions"`
}

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	Slug        *string                   `json:"slug"`
	Name        *string                   `json:"name"`
	Description *string                   `json:"description"`
	PriceCents  *int64                    `json:"price_cents" binding:"omitempty,gte=0"`
	Currency    *string                   `json:"currency" binding:"omitempty,len=3"`
	Kind        *string                   `json:"kind"`
	Active      *bool                     `json:"active"`
	Attributes  *ProductAttributesRequest `json:"attributes"`
}

func (r ProductRequest) toInput() service.ProductInput {
	input := service.ProductInput{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Currency:    r.Currency,
		Kind:        r.Kind,
		Active:      r.Active,
	}
	if r.Attributes != nil {
		input.Attributes = &service.ProductAttributesInput{
			PlantEnvironment: r.Attributes.PlantEnvironment,
			Size:             r.Attributes.Size,
			Color:            r.Attributes.Color,
			CareInstructions: r.Attributes.CareInstructions,
		}
	}
	return input
}

// ListProducts 商品列表（含下架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(c.Request.Context(), repository.ProductListFilter{
		Page:             page,
		PageSize:         pageSize,
		Kind:             strings.TrimSpace(c.Query("kind")),
		PlantEnvironment: strings.TrimSpace(c.Query("plant_environment")),
		Search:           strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, handlershared.BuildPagination(page, pageSize, total))
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	product, err := h.ProductService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, product)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := handlershared.ParamUint(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	before, err := h.ProductService.GetByID(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	product, err := h.ProductService.Update(ctx, id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	for _, slug := range []string{before.Slug, product.Slug} {
		if err := h.Cache.Del(ctx, cache.PublicProductKey(slug)); err != nil {
			requestLog(c).Warnw("public_product_cache_del_failed", "slug", slug, "error", err)
		}
	}
	response.Success(c, product)
}
