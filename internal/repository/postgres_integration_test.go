//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	_ = db.Migrator().DropTable(models.AllModels()...)
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(models.AllModels()...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearchUsesILike(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewProductRepository(db)

	product := &models.Product{
		Slug:        "pg-monstera",
		Name:        "Monstera Deliciosa",
		Description: "Large LEAF indoor plant",
		PriceCents:  4500,
		Currency:    constants.DefaultCurrency,
		Kind:        constants.ProductKindPlant,
		Active:      true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	items, total, err := repo.List(ProductListFilter{Search: "leaf", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != product.ID {
		t.Fatalf("expected case-insensitive match, total=%d len=%d", total, len(items))
	}
}

func TestPostgresConcurrentDecrementNeverOversells(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	ledger := NewNurseryInventoryRepository(db)

	row, err := ledger.Upsert(1, 1, 5)
	if err != nil {
		t.Fatalf("seed stock failed: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				repo := ledger.WithTx(tx)
				locked, err := repo.LockForUpdate([]StockKey{{NurseryID: 1, ProductID: 1}})
				if err != nil {
					return err
				}
				current, ok := locked[StockKey{NurseryID: 1, ProductID: 1}]
				if !ok || current.Quantity < 2 {
					return nil
				}
				affected, err := repo.DecrementIfAvailable(row.ID, 2)
				if err != nil {
					return err
				}
				if affected == 1 {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
				return nil
			})
			if err != nil {
				t.Errorf("transaction failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 2 {
		t.Fatalf("expected exactly 2 successful decrements, got %d", succeeded)
	}
	final, err := ledger.Get(1, 1)
	if err != nil {
		t.Fatalf("get stock failed: %v", err)
	}
	if final == nil || final.Quantity != 1 {
		t.Fatalf("expected remaining stock 1, got %+v", final)
	}
}
