package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/flower-vendor/internal/cache"
	handlershared "github.com/flower-vendor/internal/http/handlers/shared"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/repository"

	"github.com/gin-gonic/gin"
)

const publicProductCacheTTL = 30 * time.Second

// PublicProductView 公共商品响应结构
type PublicProductView struct {
	models.Product
	Available int  `json:"available"`
	IsSoldOut bool `json:"is_sold_out"`
}

func buildPublicProductView(product models.Product) PublicProductView {
	available := 0
	if product.Inventory != nil {
		available = product.Inventory.Quantity
	}
	product.Inventory = nil
	return PublicProductView{
		Product:   product,
		Available: available,
		IsSoldOut: available <= 0,
	}
}

// GetProducts 上架商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(c.Request.Context(), repository.ProductListFilter{
		Page:             page,
		PageSize:         pageSize,
		Kind:             strings.TrimSpace(c.Query("kind")),
		PlantEnvironment: strings.TrimSpace(c.Query("plant_environment")),
		Search:           strings.TrimSpace(c.Query("q")),
		OnlyActive:       true,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	views := make([]PublicProductView, 0, len(products))
	for _, product := range products {
		views = append(views, buildPublicProductView(product))
	}
	response.SuccessWithPage(c, views, handlershared.BuildPagination(page, pageSize, total))
}

// GetProductBySlug 上架商品详情，命中缓存时直接返回
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := strings.ToLower(strings.TrimSpace(c.Param("slug")))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	ctx := c.Request.Context()
	var cached PublicProductView
	if hit, err := h.Cache.GetJSON(ctx, cache.PublicProductKey(slug), &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	product, err := h.ProductService.GetPublicBySlug(ctx, slug)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view := buildPublicProductView(*product)
	if err := h.Cache.SetJSON(ctx, cache.PublicProductKey(slug), view, publicProductCacheTTL); err != nil {
		handlershared.RequestLog(c).Warnw("public_product_cache_set_failed", "slug", slug, "error", err)
	}
	response.Success(c, view)
}
