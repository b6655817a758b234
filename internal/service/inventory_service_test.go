package service

import (
	"errors"
	"testing"

	"github.com/flower-vendor/internal/models"
)

func TestRecomputeGlobalQuantity(t *testing.T) {
	snapshot := []models.NurseryInventory{
		{NurseryID: 1, ProductID: 7, Quantity: 4},
		{NurseryID: 2, ProductID: 7, Quantity: 6},
		{NurseryID: 2, ProductID: 8, Quantity: 100},
	}
	if got := RecomputeGlobalQuantity(7, snapshot); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := RecomputeGlobalQuantity(9, snapshot); got != 0 {
		t.Fatalf("expected 0 for unknown product, got %d", got)
	}
	if got := RecomputeGlobalQuantity(7, []models.NurseryInventory{{ProductID: 7, Quantity: -3}}); got != 0 {
		t.Fatalf("expected floor at 0, got %d", got)
	}
}

func TestUpsertNurseryStockKeepsGlobalInSync(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	south := createTestNursery(t, env.db, "South", "Bouake", nil)

	steps := []struct {
		nurseryID uint
		quantity  int
		want      int
	}{
		{north.ID, 4, 4},
		{south.ID, 6, 10},
		{north.ID, 1, 7},
		{south.ID, 0, 1},
	}
	for _, step := range steps {
		row, err := env.inventory.UpsertNurseryStock(t.Context(), step.nurseryID, rose.ID, step.quantity)
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if row.Quantity != step.quantity || row.ProductName != rose.Name {
			t.Fatalf("unexpected row: %+v", row)
		}
		if got := globalOf(t, env, rose.ID); got != step.want {
			t.Fatalf("expected global %d, got %d", step.want, got)
		}
	}
}

func TestUpsertNurseryStockErrors(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)

	if _, err := env.inventory.UpsertNurseryStock(t.Context(), 999, rose.ID, 1); !errors.Is(err, ErrNurseryNotFound) {
		t.Fatalf("expected nursery not found, got %v", err)
	}
	if _, err := env.inventory.UpsertNurseryStock(t.Context(), north.ID, 999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
	if _, err := env.inventory.UpsertNurseryStock(t.Context(), north.ID, rose.ID, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestListNurseryStock(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	fern := createTestProduct(t, env.db, "fern")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	setStock(t, env, north.ID, rose.ID, 2)
	setStock(t, env, north.ID, fern.ID, 3)

	rows, err := env.inventory.ListNurseryStock(t.Context(), north.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.ProductName == "" {
			t.Fatalf("expected product name on row %+v", row)
		}
	}
	if _, err := env.inventory.ListNurseryStock(t.Context(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReconcileAllCorrectsDrift(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	fern := createTestProduct(t, env.db, "fern")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	setStock(t, env, north.ID, rose.ID, 4)
	setStock(t, env, north.ID, fern.ID, 2)

	if err := env.db.Model(&models.Inventory{}).Where("product_id = ?", rose.ID).Update("quantity", 99).Error; err != nil {
		t.Fatalf("corrupt global failed: %v", err)
	}
	orphan := models.Inventory{ProductID: 12345, Quantity: 7}
	if err := env.db.Create(&orphan).Error; err != nil {
		t.Fatalf("create orphan global failed: %v", err)
	}

	corrected, err := env.inventory.ReconcileAll(t.Context())
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if corrected != 2 {
		t.Fatalf("expected 2 corrected rows, got %d", corrected)
	}
	if got := globalOf(t, env, rose.ID); got != 4 {
		t.Fatalf("expected rose global 4, got %d", got)
	}
	if got := globalOf(t, env, 12345); got != 0 {
		t.Fatalf("expected orphan global reset to 0, got %d", got)
	}

	corrected, err = env.inventory.ReconcileAll(t.Context())
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if corrected != 0 {
		t.Fatalf("expected no corrections on clean ledger, got %d", corrected)
	}
}

func TestReconcileProductsOnlyTouchesRequested(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	fern := createTestProduct(t, env.db, "fern")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	setStock(t, env, north.ID, rose.ID, 4)
	setStock(t, env, north.ID, fern.ID, 2)

	if err := env.db.Model(&models.Inventory{}).Where("product_id IN ?", []uint{rose.ID, fern.ID}).Update("quantity", 50).Error; err != nil {
		t.Fatalf("corrupt globals failed: %v", err)
	}

	corrected, err := env.inventory.ReconcileProducts(t.Context(), []uint{rose.ID, rose.ID, 0})
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if corrected != 1 {
		t.Fatalf("expected 1 corrected row, got %d", corrected)
	}
	if got := globalOf(t, env, rose.ID); got != 4 {
		t.Fatalf("expected rose global 4, got %d", got)
	}
	if got := globalOf(t, env, fern.ID); got != 50 {
		t.Fatalf("expected fern global untouched at 50, got %d", got)
	}
}
