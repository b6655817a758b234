package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/flower-vendor/internal/authz"
	"github.com/flower-vendor/internal/cache"
	"github.com/flower-vendor/internal/config"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/metrics"
	"github.com/flower-vendor/internal/queue"
	"github.com/flower-vendor/internal/repository"
	"github.com/flower-vendor/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// Container 依赖注入容器，配置与数据库由调用方显式传入
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	Cache       *cache.Store
	QueueClient *queue.Client
	Registry    *prometheus.Registry
	Metrics     *metrics.FulfillmentMetrics

	// Repositories
	AdminRepo            repository.AdminRepository
	ProductRepo          repository.ProductRepository
	InventoryRepo        repository.InventoryRepository
	NurseryRepo          repository.NurseryRepository
	NurseryInventoryRepo repository.NurseryInventoryRepository
	OrderRepo            repository.OrderRepository
	FulfillmentRepo      repository.FulfillmentRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	ProductService     *service.ProductService
	InventoryService   *service.InventoryService
	NurseryService     *service.NurseryService
	OrderService       *service.OrderService
	AllocationService  *service.AllocationService
	FulfillmentService *service.FulfillmentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) (*Container, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, errors.New("db is nil")
	}

	store := cache.NewStore(&cfg.Redis)
	if store.Enabled() {
		if err := store.Ping(context.Background()); err != nil {
			logger.Warnw("provider_init_redis_failed", "error", err)
		}
	}

	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Container{
		Config:      cfg,
		DB:          db,
		Cache:       store,
		QueueClient: queueClient,
		Registry:    registry,
		Metrics:     metrics.NewFulfillmentMetrics(registry),
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	db := c.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.InventoryRepo = repository.NewInventoryRepository(db)
	c.NurseryRepo = repository.NewNurseryRepository(db)
	c.NurseryInventoryRepo = repository.NewNurseryInventoryRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.FulfillmentRepo = repository.NewFulfillmentRepository(db)
}

func (c *Container) initServices() error {
	authzService, err := authz.NewService(c.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return fmt.Errorf("bootstrap builtin roles: %w", err)
	}
	c.AuthzService = authzService

	c.AuthService = service.NewAuthService(c.Config.JWT, c.AdminRepo, c.Cache)
	c.ProductService = service.NewProductService(c.DB, c.ProductRepo, c.InventoryRepo)
	c.InventoryService = service.NewInventoryService(c.DB, c.NurseryRepo, c.ProductRepo, c.NurseryInventoryRepo, c.InventoryRepo, c.Metrics)
	c.NurseryService = service.NewNurseryService(c.DB, c.NurseryRepo, c.NurseryInventoryRepo, c.FulfillmentRepo, c.InventoryService)
	c.OrderService = service.NewOrderService(c.DB, c.Config.Order, c.OrderRepo, c.ProductRepo, c.NurseryRepo)
	c.AllocationService = service.NewAllocationService(c.DB, c.OrderRepo, c.NurseryRepo, c.NurseryInventoryRepo, c.FulfillmentRepo, c.Metrics)
	c.FulfillmentService = service.NewFulfillmentService(c.DB, c.OrderRepo, c.NurseryRepo, c.NurseryInventoryRepo, c.FulfillmentRepo, c.InventoryService, c.QueueClient, c.Metrics)
	return nil
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := c.Cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
