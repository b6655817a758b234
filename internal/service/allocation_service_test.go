package service

import (
	"errors"
	"testing"

	"github.com/flower-vendor/internal/constants"
	"github.com/flower-vendor/internal/models"
)

func TestMatchTier(t *testing.T) {
	address := models.Address{City: "Abidjan", Commune: strPtr("Cocody")}
	cases := []struct {
		name    string
		nursery models.Nursery
		want    int
	}{
		{"same commune", models.Nursery{City: "Abidjan", Commune: strPtr("Cocody")}, constants.MatchTierCommune},
		{"same commune case-insensitive", models.Nursery{City: "ABIDJAN", Commune: strPtr(" cocody ")}, constants.MatchTierCommune},
		{"same city other commune", models.Nursery{City: "Abidjan", Commune: strPtr("Plateau")}, constants.MatchTierCity},
		{"same city no commune", models.Nursery{City: "abidjan"}, constants.MatchTierCity},
		{"other city", models.Nursery{City: "Yamoussoukro"}, constants.MatchTierOther},
	}
	for _, tc := range cases {
		if got := MatchTier(address, tc.nursery); got != tc.want {
			t.Fatalf("%s: expected tier %d, got %d", tc.name, tc.want, got)
		}
	}

	noCommune := models.Address{City: "Bouake"}
	if got := MatchTier(noCommune, models.Nursery{City: "Abidjan", Commune: strPtr("Cocody")}); got != constants.MatchTierOther {
		t.Fatalf("expected tier 3 without address commune, got %d", got)
	}
}

func TestRankSuggestionsOrdersByTierThenItemCount(t *testing.T) {
	suggestions := []NurserySuggestion{
		{NurseryID: 1, MatchTier: 3, AvailableItems: make([]SuggestedItem, 1)},
		{NurseryID: 2, MatchTier: 1, AvailableItems: make([]SuggestedItem, 2)},
		{NurseryID: 3, MatchTier: 2, AvailableItems: make([]SuggestedItem, 1)},
	}
	RankSuggestions(suggestions)
	want := []uint{2, 3, 1}
	for i, id := range want {
		if suggestions[i].NurseryID != id {
			t.Fatalf("position %d: expected nursery %d, got %d", i, id, suggestions[i].NurseryID)
		}
	}
}

func TestRankSuggestionsIsStableWithinTier(t *testing.T) {
	suggestions := []NurserySuggestion{
		{NurseryID: 1, MatchTier: 2, AvailableItems: make([]SuggestedItem, 1)},
		{NurseryID: 2, MatchTier: 2, AvailableItems: make([]SuggestedItem, 3)},
		{NurseryID: 3, MatchTier: 2, AvailableItems: make([]SuggestedItem, 1)},
	}
	RankSuggestions(suggestions)
	want := []uint{2, 1, 3}
	for i, id := range want {
		if suggestions[i].NurseryID != id {
			t.Fatalf("position %d: expected nursery %d, got %d", i, id, suggestions[i].NurseryID)
		}
	}
}

func TestBuildSuggestionsCapsAvailableAtRequested(t *testing.T) {
	productA := uint(10)
	productB := uint(11)
	items := []models.OrderItem{
		{ID: 1, ProductID: &productA, Quantity: 2, ProductName: "Rose"},
		{ID: 2, ProductID: &productB, Quantity: 5, ProductName: "Tulip"},
		{ID: 3, ProductID: nil, Quantity: 1, ProductName: "Removed"},
	}
	nurseries := []models.Nursery{{ID: 7, InternalName: "North", City: "Abidjan"}}
	stock := []models.NurseryInventory{
		{NurseryID: 7, ProductID: productA, Quantity: 9},
		{NurseryID: 7, ProductID: productB, Quantity: 3},
	}
	got := BuildSuggestions(models.Address{City: "Abidjan"}, items, nurseries, stock)
	if len(got) != 1 || len(got[0].AvailableItems) != 2 {
		t.Fatalf("unexpected suggestions: %+v", got)
	}
	if got[0].AvailableItems[0].AvailableQty != 2 || got[0].AvailableItems[0].RequestedQty != 2 {
		t.Fatalf("expected available capped at requested: %+v", got[0].AvailableItems[0])
	}
	if got[0].AvailableItems[1].AvailableQty != 3 {
		t.Fatalf("expected available limited by stock: %+v", got[0].AvailableItems[1])
	}
	if got[0].MatchTier != constants.MatchTierCity {
		t.Fatalf("expected city tier, got %d", got[0].MatchTier)
	}
}

func TestSuggestRanksNurseries(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	fern := createTestProduct(t, env.db, "fern")

	far := createTestNursery(t, env.db, "Far", "Yamoussoukro", nil)
	commune := createTestNursery(t, env.db, "Cocody", "Abidjan", strPtr("Cocody"))
	city := createTestNursery(t, env.db, "Plateau", "Abidjan", strPtr("Plateau"))
	empty := createTestNursery(t, env.db, "Empty", "Abidjan", strPtr("Cocody"))

	setStock(t, env, far.ID, rose.ID, 5)
	setStock(t, env, commune.ID, rose.ID, 1)
	setStock(t, env, commune.ID, fern.ID, 4)
	setStock(t, env, city.ID, fern.ID, 2)
	setStock(t, env, empty.ID, rose.ID, 0)

	order, items := createTestOrder(t, env.db, testAddress("Abidjan", strPtr("Cocody")), []models.OrderItem{
		orderItemFor(rose, 2),
		orderItemFor(fern, 1),
	})

	result, err := env.allocation.Suggest(t.Context(), order.ID)
	if err != nil {
		t.Fatalf("suggest failed: %v", err)
	}
	if result.OrderID != order.ID {
		t.Fatalf("unexpected order id: %d", result.OrderID)
	}
	if len(result.Suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %+v", result.Suggestions)
	}
	wantOrder := []uint{commune.ID, city.ID, far.ID}
	wantTier := []int{1, 2, 3}
	for i := range wantOrder {
		if result.Suggestions[i].NurseryID != wantOrder[i] || result.Suggestions[i].MatchTier != wantTier[i] {
			t.Fatalf("position %d: unexpected suggestion %+v", i, result.Suggestions[i])
		}
	}
	first := result.Suggestions[0]
	if len(first.AvailableItems) != 2 || first.AvailableItems[0].OrderItemID != items[0].ID || first.AvailableItems[0].AvailableQty != 1 {
		t.Fatalf("unexpected first suggestion items: %+v", first.AvailableItems)
	}
	if first.NurseryName != "Cocody" || first.Commune == nil || *first.Commune != "Cocody" {
		t.Fatalf("unexpected nursery fields: %+v", first)
	}
}

func TestSuggestErrors(t *testing.T) {
	env := setupFulfillmentTest(t)
	if _, err := env.allocation.Suggest(t.Context(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	rose := createTestProduct(t, env.db, "rose")
	order, _ := createTestOrder(t, env.db, nil, []models.OrderItem{orderItemFor(rose, 1)})
	if _, err := env.allocation.Suggest(t.Context(), order.ID); !errors.Is(err, ErrOrderNoShippingAddress) || !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state for missing address, got %v", err)
	}
}

func TestCommitReplacesProposedFulfillments(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	fern := createTestProduct(t, env.db, "fern")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	south := createTestNursery(t, env.db, "South", "Abidjan", nil)
	order, items := createTestOrder(t, env.db, testAddress("Abidjan", nil), []models.OrderItem{
		orderItemFor(rose, 2),
		orderItemFor(fern, 3),
	})

	first, err := env.allocation.Commit(t.Context(), order.ID, []AllocationInput{
		{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: items[0].ID, Quantity: 2}}},
		{NurseryID: south.ID, Items: []AllocationItemInput{{OrderItemID: items[1].ID, Quantity: 3}}},
	})
	if err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 fulfillments, got %d", len(first))
	}
	if first[0].NurseryName == nil || *first[0].NurseryName != "North" {
		t.Fatalf("expected nursery name on view: %+v", first[0])
	}
	if first[0].Items[0].OrderItemProductName == nil || *first[0].Items[0].OrderItemProductName != rose.Name {
		t.Fatalf("expected product name on item view: %+v", first[0].Items[0])
	}

	second, err := env.allocation.Commit(t.Context(), order.ID, []AllocationInput{
		{NurseryID: south.ID, Items: []AllocationItemInput{
			{OrderItemID: items[0].ID, Quantity: 1},
			{OrderItemID: items[1].ID, Quantity: 1},
		}},
	})
	if err != nil {
		t.Fatalf("second commit failed: %v", err)
	}

	var proposed []models.OrderFulfillment
	if err := env.db.Where("order_id = ? AND status = ?", order.ID, constants.FulfillmentStatusProposed).Find(&proposed).Error; err != nil {
		t.Fatalf("query fulfillments failed: %v", err)
	}
	if len(proposed) != 1 || proposed[0].ID != second[0].ID {
		t.Fatalf("expected only second commit fulfillment, got %+v", proposed)
	}
	var itemCount int64
	env.db.Model(&models.OrderFulfillmentItem{}).Count(&itemCount)
	if itemCount != 2 {
		t.Fatalf("expected 2 fulfillment items after replace, got %d", itemCount)
	}
	if stockOf(t, env, north.ID, rose.ID) != 0 || globalOf(t, env, rose.ID) != 0 {
		t.Fatalf("commit must not touch inventory")
	}
}

func TestCommitKeepsConfirmedFulfillments(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	order, items := createTestOrder(t, env.db, testAddress("Abidjan", nil), []models.OrderItem{orderItemFor(rose, 2)})

	nurseryID := north.ID
	confirmed := models.OrderFulfillment{OrderID: order.ID, NurseryID: &nurseryID, Status: constants.FulfillmentStatusConfirmed}
	if err := env.db.Create(&confirmed).Error; err != nil {
		t.Fatalf("create confirmed fulfillment failed: %v", err)
	}
	if _, err := env.allocation.Commit(t.Context(), order.ID, []AllocationInput{
		{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: items[0].ID, Quantity: 1}}},
	}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	var count int64
	env.db.Model(&models.OrderFulfillment{}).Where("id = ?", confirmed.ID).Count(&count)
	if count != 1 {
		t.Fatalf("confirmed fulfillment must survive commit")
	}
}

func TestCommitValidation(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	order, items := createTestOrder(t, env.db, testAddress("Abidjan", nil), []models.OrderItem{orderItemFor(rose, 2)})
	_, otherItems := createTestOrder(t, env.db, testAddress("Abidjan", nil), []models.OrderItem{orderItemFor(rose, 1)})

	cases := []struct {
		name    string
		orderID uint
		input   []AllocationInput
		want    error
	}{
		{"missing order", 999, nil, ErrOrderNotFound},
		{"missing nursery", order.ID, []AllocationInput{{NurseryID: 999, Items: []AllocationItemInput{{OrderItemID: 12345, Quantity: 9}}}}, ErrNurseryNotFound},
		{"foreign order item", order.ID, []AllocationInput{{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: otherItems[0].ID, Quantity: 1}}}}, ErrOrderItemNotInOrder},
		{"quantity exceeds ordered", order.ID, []AllocationInput{{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: items[0].ID, Quantity: 3}}}}, ErrAllocationQuantityExceeded},
		{"zero quantity", order.ID, []AllocationInput{{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: items[0].ID, Quantity: 0}}}}, ErrAllocationQuantityInvalid},
		{"no items", order.ID, []AllocationInput{{NurseryID: north.ID}}, ErrAllocationItemsEmpty},
	}
	for _, tc := range cases {
		_, err := env.allocation.Commit(t.Context(), tc.orderID, tc.input)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	_, err := env.allocation.Commit(t.Context(), order.ID, []AllocationInput{
		{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: items[0].ID, Quantity: 3}}},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument category, got %v", err)
	}
	var count int64
	env.db.Model(&models.OrderFulfillment{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no fulfillments after rejected commits, got %d", count)
	}
}

func TestCommitRejectsCancelledOrder(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	order, items := createTestOrder(t, env.db, testAddress("Abidjan", nil), []models.OrderItem{orderItemFor(rose, 2)})
	if err := env.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusCancelled).Error; err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	_, err := env.allocation.Commit(t.Context(), order.ID, []AllocationInput{
		{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: items[0].ID, Quantity: 1}}},
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
}

func TestCommitEmptyClearsProposed(t *testing.T) {
	env := setupFulfillmentTest(t)
	rose := createTestProduct(t, env.db, "rose")
	north := createTestNursery(t, env.db, "North", "Abidjan", nil)
	order, items := createTestOrder(t, env.db, testAddress("Abidjan", nil), []models.OrderItem{orderItemFor(rose, 2)})
	if _, err := env.allocation.Commit(t.Context(), order.ID, []AllocationInput{
		{NurseryID: north.ID, Items: []AllocationItemInput{{OrderItemID: items[0].ID, Quantity: 2}}},
	}); err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	views, err := env.allocation.Commit(t.Context(), order.ID, nil)
	if err != nil {
		t.Fatalf("empty commit failed: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected no fulfillments, got %d", len(views))
	}
	var count int64
	env.db.Model(&models.OrderFulfillment{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected proposed fulfillments cleared, got %d", count)
	}
}
