package main

import (
	"context"
	"errors"

	"github.com/flower-vendor/internal/config"
	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/logger"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/provider"
	"github.com/flower-vendor/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProduct struct {
	slug        string
	name        string
	description string
	priceCents  int64
	kind        string
	environment string
}

type seedNursery struct {
	name      string
	city      string
	commune   string
	latitude  string
	longitude string
	stock     map[string]int
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	db, err := models.OpenDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	})
	if err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(db); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		stdLog.Fatalf("Failed to build container: %v", err)
	}
	defer container.Close()
	ctx := context.Background()

	// 添加商品
	products := []seedProduct{
		{slug: "monstera-deliciosa", name: "Monstera Deliciosa", description: "Split-leaf philodendron for bright indoor corners.", priceCents: 3500, kind: constants.ProductKindPlant, environment: constants.PlantEnvironmentIndoor},
		{slug: "bougainvillea", name: "Bougainvillea", description: "Climbing shrub with magenta bracts.", priceCents: 2200, kind: constants.ProductKindPlant, environment: constants.PlantEnvironmentOutdoor},
		{slug: "peace-lily", name: "Peace Lily", description: "Low-light tolerant flowering plant.", priceCents: 1800, kind: constants.ProductKindPlant, environment: constants.PlantEnvironmentBoth},
		{slug: "red-rose-bouquet", name: "Red Rose Bouquet", description: "Twelve long-stem red roses.", priceCents: 4500, kind: constants.ProductKindBouquet},
		{slug: "terracotta-vase", name: "Terracotta Vase", description: "Hand-thrown 25cm vase.", priceCents: 1500, kind: constants.ProductKindVase},
	}
	productIDs := map[string]uint{}
	for _, item := range products {
		existing, err := container.ProductRepo.GetBySlug(item.slug, false)
		if err != nil {
			stdLog.Printf("Failed to load product %s: %v", item.slug, err)
			continue
		}
		if existing != nil {
			productIDs[item.slug] = existing.ID
			stdLog.Printf("Product already exists: %s", item.slug)
			continue
		}
		active := true
		input := service.ProductInput{
			Slug:        &item.slug,
			Name:        &item.name,
			Description: &item.description,
			PriceCents:  &item.priceCents,
			Kind:        &item.kind,
			Active:      &active,
		}
		if item.environment != "" {
			input.Attributes = &service.ProductAttributesInput{PlantEnvironment: &item.environment}
		}
		created, err := container.ProductService.Create(ctx, input)
		if err != nil {
			stdLog.Printf("Failed to create product %s: %v", item.slug, err)
			continue
		}
		productIDs[item.slug] = created.ID
		stdLog.Printf("Created product: %s", item.slug)
	}

	// 添加苗圃与库存
	nurseries := []seedNursery{
		{name: "Cocody Greenhouse", city: "Abidjan", commune: "Cocody", latitude: "5.35995170", longitude: "-3.98941730", stock: map[string]int{"monstera-deliciosa": 12, "peace-lily": 20, "red-rose-bouquet": 8}},
		{name: "Yopougon Yard", city: "Abidjan", commune: "Yopougon", latitude: "5.33635390", longitude: "-4.08903930", stock: map[string]int{"bougainvillea": 30, "terracotta-vase": 15, "monstera-deliciosa": 4}},
		{name: "Bouake Fields", city: "Bouake", stock: map[string]int{"bougainvillea": 50, "peace-lily": 6}},
	}
	for _, item := range nurseries {
		nursery, err := ensureNursery(ctx, db, container.NurseryService, item)
		if err != nil {
			stdLog.Printf("Failed to ensure nursery %s: %v", item.name, err)
			continue
		}
		for slug, quantity := range item.stock {
			productID, ok := productIDs[slug]
			if !ok {
				continue
			}
			if _, err := container.InventoryService.UpsertNurseryStock(ctx, nursery.ID, productID, quantity); err != nil {
				stdLog.Printf("Failed to set stock %s@%s: %v", slug, item.name, err)
			}
		}
		stdLog.Printf("Seeded nursery: %s", item.name)
	}

	stdLog.Printf("Seed completed")
}

func ensureNursery(ctx context.Context, db *gorm.DB, nurseryService *service.NurseryService, item seedNursery) (*models.Nursery, error) {
	var existing models.Nursery
	err := db.WithContext(ctx).Where("internal_name = ?", item.name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	input := service.NurseryInput{InternalName: &item.name, City: &item.city}
	if item.commune != "" {
		input.Commune = &item.commune
	}
	if item.latitude != "" && item.longitude != "" {
		lat, err := decimal.NewFromString(item.latitude)
		if err != nil {
			return nil, err
		}
		lon, err := decimal.NewFromString(item.longitude)
		if err != nil {
			return nil, err
		}
		input.Latitude = &lat
		input.Longitude = &lon
	}
	return nurseryService.Create(ctx, input)
}
