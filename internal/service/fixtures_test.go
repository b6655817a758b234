package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/metrics"
	"github.com/flower-vendor/internal/models"
	"github.com/flower-vendor/internal/queue"
	"github.com/flower-vendor/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fulfillmentTestEnv struct {
	db          *gorm.DB
	inventory   *InventoryService
	allocation  *AllocationService
	fulfillment *FulfillmentService
	ledgerRepo  *repository.GormNurseryInventoryRepository
}

func setupFulfillmentTest(t *testing.T) *fulfillmentTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:fulfillment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	nurseryRepo := repository.NewNurseryRepository(db)
	productRepo := repository.NewProductRepository(db)
	ledgerRepo := repository.NewNurseryInventoryRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	queueClient, _ := queue.NewClient(nil)
	m := metrics.NewFulfillmentMetrics(nil)

	inventory := NewInventoryService(db, nurseryRepo, productRepo, ledgerRepo, inventoryRepo, m)
	return &fulfillmentTestEnv{
		db:          db,
		inventory:   inventory,
		allocation:  NewAllocationService(db, orderRepo, nurseryRepo, ledgerRepo, fulfillmentRepo, m),
		fulfillment: NewFulfillmentService(db, orderRepo, nurseryRepo, ledgerRepo, fulfillmentRepo, inventory, queueClient, m),
		ledgerRepo:  ledgerRepo,
	}
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string) models.Product {
	t.Helper()
	product := models.Product{
		Slug:       slug,
		Name:       "Product " + slug,
		PriceCents: 1500,
		Currency:   constants.DefaultCurrency,
		Kind:       constants.ProductKindPlant,
		Active:     true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestNursery(t *testing.T, db *gorm.DB, name, city string, commune *string) models.Nursery {
	t.Helper()
	nursery := models.Nursery{InternalName: name, City: city, Commune: commune}
	if err := db.Create(&nursery).Error; err != nil {
		t.Fatalf("create nursery failed: %v", err)
	}
	return nursery
}

func createTestOrder(t *testing.T, db *gorm.DB, address *models.Address, items []models.OrderItem) (models.Order, []models.OrderItem) {
	t.Helper()
	order := models.Order{
		CustomerEmail: "buyer@example.com",
		Status:        constants.OrderStatusPlaced,
		Currency:      constants.DefaultCurrency,
	}
	if err := repository.NewOrderRepository(db).Create(&order, items, address); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order, items
}

func orderItemFor(product models.Product, quantity int) models.OrderItem {
	productID := product.ID
	return models.OrderItem{
		ProductID:      &productID,
		Quantity:       quantity,
		UnitPriceCents: product.PriceCents,
		ProductName:    product.Name,
	}
}

func testAddress(city string, commune *string) *models.Address {
	return &models.Address{
		FullName:      "Awa Kone",
		StreetAddress: "12 Rue des Jardins",
		City:          city,
		Commune:       commune,
		PostalCode:    "00225",
		Country:       "CI",
	}
}

func strPtr(value string) *string {
	return &value
}

func setStock(t *testing.T, env *fulfillmentTestEnv, nurseryID, productID uint, quantity int) {
	t.Helper()
	if _, err := env.inventory.UpsertNurseryStock(t.Context(), nurseryID, productID, quantity); err != nil {
		t.Fatalf("upsert stock failed: %v", err)
	}
}

func stockOf(t *testing.T, env *fulfillmentTestEnv, nurseryID, productID uint) int {
	t.Helper()
	row, err := env.ledgerRepo.Get(nurseryID, productID)
	if err != nil {
		t.Fatalf("get stock failed: %v", err)
	}
	if row == nil {
		return 0
	}
	return row.Quantity
}

func globalOf(t *testing.T, env *fulfillmentTestEnv, productID uint) int {
	t.Helper()
	qty, err := env.inventory.GetGlobalQuantity(productID)
	if err != nil {
		t.Fatalf("get global quantity failed: %v", err)
	}
	return qty
}
