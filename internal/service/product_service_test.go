package service

import (
	"errors"
	"testing"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/repository"
)

func newTestProductService(env *fulfillmentTestEnv) *ProductService {
	return NewProductService(env.db, repository.NewProductRepository(env.db), repository.NewInventoryRepository(env.db))
}

func TestProductCreateDefaultsAndInventory(t *testing.T) {
	env := setupFulfillmentTest(t)
	svc := newTestProductService(env)

	price := int64(2500)
	kind := constants.ProductKindPlant
	product, err := svc.Create(t.Context(), ProductInput{
		Slug:       strPtr("Monstera-Deliciosa"),
		Name:       strPtr("Monstera"),
		PriceCents: &price,
		Kind:       &kind,
		Attributes: &ProductAttributesInput{PlantEnvironment: strPtr(constants.PlantEnvironmentIndoor)},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if product.Slug != "monstera-deliciosa" || product.Active || product.Currency != constants.DefaultCurrency {
		t.Fatalf("unexpected product defaults: %+v", product)
	}
	if product.Inventory == nil || product.Inventory.Quantity != 0 {
		t.Fatalf("expected zero inventory row, got %+v", product.Inventory)
	}
	if product.Attributes == nil || product.Attributes.PlantEnvironment != constants.PlantEnvironmentIndoor {
		t.Fatalf("expected attributes, got %+v", product.Attributes)
	}

	if _, err := svc.Create(t.Context(), ProductInput{
		Slug: strPtr("monstera-deliciosa"), Name: strPtr("Dup"), PriceCents: &price, Kind: &kind,
	}); !errors.Is(err, ErrProductSlugExists) {
		t.Fatalf("expected slug exists, got %v", err)
	}
	badKind := "tractor"
	if _, err := svc.Create(t.Context(), ProductInput{
		Slug: strPtr("tractor"), Name: strPtr("Tractor"), PriceCents: &price, Kind: &badKind,
	}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestProductUpdateAndPublicLookup(t *testing.T) {
	env := setupFulfillmentTest(t)
	svc := newTestProductService(env)
	price := int64(900)
	kind := constants.ProductKindBouquet
	product, err := svc.Create(t.Context(), ProductInput{
		Slug: strPtr("spring-bouquet"), Name: strPtr("Spring"), PriceCents: &price, Kind: &kind,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.GetPublicBySlug(t.Context(), "spring-bouquet"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product should be hidden, got %v", err)
	}

	active := true
	updated, err := svc.Update(t.Context(), product.ID, ProductInput{
		Active:     &active,
		Attributes: &ProductAttributesInput{Color: strPtr("yellow")},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Active || updated.Attributes == nil || updated.Attributes.Color != "yellow" {
		t.Fatalf("unexpected updated product: %+v", updated)
	}
	public, err := svc.GetPublicBySlug(t.Context(), "spring-bouquet")
	if err != nil || public.ID != product.ID {
		t.Fatalf("expected public product, got %+v err=%v", public, err)
	}

	items, total, err := svc.List(t.Context(), repository.ProductListFilter{OnlyActive: true, Search: "spr", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 product, got total=%d len=%d", total, len(items))
	}
	if _, _, err := svc.List(t.Context(), repository.ProductListFilter{Kind: "tractor"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid filter, got %v", err)
	}
}
