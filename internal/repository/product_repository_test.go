package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewProductRepository(db), db
}

func createCatalogProduct(t *testing.T, repo *GormProductRepository, slug, name, kind string, active bool, environment string) *models.Product {
	t.Helper()
	product := &models.Product{
		Slug:       slug,
		Name:       name,
		PriceCents: 1200,
		Currency:   constants.DefaultCurrency,
		Kind:       kind,
		Active:     active,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if environment != "" {
		if err := repo.SaveAttributes(&models.ProductAttributes{ProductID: product.ID, PlantEnvironment: environment}); err != nil {
			t.Fatalf("save attributes failed: %v", err)
		}
	}
	return product
}

func TestProductRepositoryGetBySlugRespectsActive(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	createCatalogProduct(t, repo, "hidden-fern", "Hidden Fern", constants.ProductKindPlant, false, "")

	got, err := repo.GetBySlug("hidden-fern", true)
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if got != nil {
		t.Fatalf("inactive product should be hidden from active lookup")
	}
	got, err = repo.GetBySlug(" hidden-fern ", false)
	if err != nil {
		t.Fatalf("get by slug failed: %v", err)
	}
	if got == nil || got.Name != "Hidden Fern" {
		t.Fatalf("expected inactive product without active filter, got %+v", got)
	}

	missing, err := repo.GetByID(9999)
	if err != nil || missing != nil {
		t.Fatalf("missing product should return nil, nil; got %+v %v", missing, err)
	}
}

func TestProductRepositoryListFilters(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	createCatalogProduct(t, repo, "monstera", "Monstera Deliciosa", constants.ProductKindPlant, true, constants.PlantEnvironmentIndoor)
	createCatalogProduct(t, repo, "olive", "Olive Tree", constants.ProductKindPlant, true, constants.PlantEnvironmentOutdoor)
	createCatalogProduct(t, repo, "ivy", "Ivy 100%", constants.ProductKindPlant, true, constants.PlantEnvironmentBoth)
	createCatalogProduct(t, repo, "red-bouquet", "Red Bouquet", constants.ProductKindBouquet, true, "")
	createCatalogProduct(t, repo, "old-vase", "Old Vase", constants.ProductKindVase, false, "")

	cases := []struct {
		name   string
		filter ProductListFilter
		want   int64
	}{
		{name: "all", filter: ProductListFilter{}, want: 5},
		{name: "only active", filter: ProductListFilter{OnlyActive: true}, want: 4},
		{name: "kind", filter: ProductListFilter{Kind: constants.ProductKindPlant}, want: 3},
		{name: "indoor includes both", filter: ProductListFilter{PlantEnvironment: constants.PlantEnvironmentIndoor}, want: 2},
		{name: "search case insensitive", filter: ProductListFilter{Search: "monSTERA"}, want: 1},
		{name: "search escapes wildcard", filter: ProductListFilter{Search: "100%"}, want: 1},
		{name: "search underscore literal", filter: ProductListFilter{Search: "_"}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, total, err := repo.List(tc.filter)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if total != tc.want {
				t.Fatalf("total want %d got %d", tc.want, total)
			}
		})
	}
}

func TestProductRepositoryListPagination(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	for i := 0; i < 5; i++ {
		createCatalogProduct(t, repo, fmt.Sprintf("rose-%d", i), fmt.Sprintf("Rose %d", i), constants.ProductKindPlant, true, "")
	}

	products, total, err := repo.List(ProductListFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("total want 5 got %d", total)
	}
	if len(products) != 2 {
		t.Fatalf("page size want 2 got %d", len(products))
	}
	if products[0].ID <= products[1].ID {
		t.Fatalf("products should be ordered by id desc")
	}
}
