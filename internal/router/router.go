package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/flower-vendor/internal/authz"
	"github.com/flower-vendor/internal/config"
	adminhandlers "github.com/flower-vendor/internal/http/handlers/admin"
	publichandlers "github.com/flower-vendor/internal/http/handlers/public"
	"github.com/flower-vendor/internal/http/response"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := c.Cache.Client()
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "fv"
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_rate_limited",
	}
	orderRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:order", redisPrefix),
		WindowSeconds: cfg.Security.OrderRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.OrderRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "route not found")
	})

	r.GET(healthPath, func(ctx *gin.Context) {
		sqlDB, err := c.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx.Request.Context())
		}
		if err != nil {
			logger.Warnw("health_db_ping_failed", "error", err)
			response.InternalError(ctx, "database unavailable")
			return
		}
		response.Success(ctx, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))
	}

	adminAuth := []gin.HandlerFunc{JWTAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService)}

	// 核心分配路由同时挂载在根路径与 /api/v1 下
	registerAllocationRoutes(r.Group("", adminAuth...), adminHandler)

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
			public.POST("/orders", RateLimitMiddleware(redisClient, orderRule, KeyByIPAndJSONField("email")), publicHandler.CreateOrder)
		}

		registerAllocationRoutes(apiV1.Group("", adminAuth...), adminHandler)

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Group("", adminAuth...)
			{
				authorized.GET("/me", adminHandler.GetAdminMe)

				// 苗圃与库存
				authorized.GET("/nurseries", adminHandler.ListNurseries)
				authorized.POST("/nurseries", adminHandler.CreateNursery)
				authorized.GET("/nurseries/:id", adminHandler.GetNursery)
				authorized.PATCH("/nurseries/:id", adminHandler.UpdateNursery)
				authorized.DELETE("/nurseries/:id", adminHandler.DeleteNursery)
				authorized.GET("/nurseries/:id/inventory", adminHandler.ListNurseryInventory)

				// 商品管理
				authorized.GET("/products", adminHandler.ListProducts)
				authorized.POST("/products", adminHandler.CreateProduct)
				authorized.GET("/products/:id", adminHandler.GetProduct)
				authorized.PATCH("/products/:id", adminHandler.UpdateProduct)

				// 订单与履约
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.PATCH("/orders/:id", adminHandler.UpdateOrderStatus)
				authorized.POST("/fulfillments/:id/delivery-contact", adminHandler.SetDeliveryContact)

				// 权限管理
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	return r
}

// registerAllocationRoutes 注册分配核心路由，调用方负责挂载鉴权中间件
func registerAllocationRoutes(group *gin.RouterGroup, h *adminhandlers.Handler) {
	group.GET("/orders/admin/:id/allocation-suggestions", h.GetAllocationSuggestions)
	group.POST("/orders/admin/:id/allocate", h.AllocateOrder)
	group.POST("/orders/admin/:id/confirm", h.ConfirmAllocation)
	group.PUT("/admin/nurseries/:id/inventory/:product_id", h.UpsertNurseryInventory)
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}
	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		if !strings.HasPrefix(object, "/admin/") && !strings.HasPrefix(object, "/orders/admin/") {
			continue
		}
		if object == "/admin/login" {
			continue
		}
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})
	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 || segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
