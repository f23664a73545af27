package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"weddingbudget/internal/budget"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns an opaque user id unique within the test run.
func NewUserID() string {
	return fmt.Sprintf("user-%d", nextID())
}

// Option builds an option snapshot.
func Option(id string, priceCents int64, tags ...string) models.Option {
	return models.Option{ID: id, Name: id, PriceCents: priceCents, Tags: tags, Reasons: []string{}}
}

// Item builds an unsaved decision item with the given selection and alternates.
func Item(category models.Category, impact int, selected models.Option, alternates ...models.Option) models.DecisionItem {
	item := models.DecisionItem{Category: category, ImpactScore: impact, Status: models.DecisionStatusPending}
	item.SetSelected(selected)
	item.SetAlternates(alternates)
	return item
}

// CreateTestPlan stores a plan for userID with the given items and a
// reconciled subtotal cache. The items slice is updated with their new ids.
func CreateTestPlan(t *testing.T, db *gorm.DB, userID string, redlineCents int64, rates money.Rates, items []models.DecisionItem) *models.Plan {
	t.Helper()

	plan := &models.Plan{
		UserID:       userID,
		RedlineCents: redlineCents,
		TaxPct:       rates.TaxPct,
		ServicePct:   rates.ServicePct,
		GratuityPct:  rates.GratuityPct,
		Status:       models.PlanStatusPreview,
	}
	budget.Reconcile(plan, items)

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test plan: %v", err)
	}
	for i := range items {
		items[i].PlanID = plan.ID
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("failed to create test decision item: %v", err)
		}
	}
	return plan
}

// CreateTestVendorOptions stores catalog entries as given.
func CreateTestVendorOptions(t *testing.T, db *gorm.DB, opts ...models.VendorOption) {
	t.Helper()

	for i := range opts {
		if err := db.Create(&opts[i]).Error; err != nil {
			t.Fatalf("failed to create test vendor option %s: %v", opts[i].ID, err)
		}
	}
}

// LoadItems returns the stored decision items of a plan keyed by id.
func LoadItems(t *testing.T, db *gorm.DB, planID string) map[string]models.DecisionItem {
	t.Helper()

	var items []models.DecisionItem
	if err := db.Where("plan_id = ?", planID).Find(&items).Error; err != nil {
		t.Fatalf("failed to load decision items: %v", err)
	}
	out := make(map[string]models.DecisionItem, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out
}

// AssertSubtotalCache fails unless the stored plan cache equals the sum of
// its stored selections.
func AssertSubtotalCache(t *testing.T, db *gorm.DB, planID string) int64 {
	t.Helper()

	var plan models.Plan
	if err := db.First(&plan, "id = ?", planID).Error; err != nil {
		t.Fatalf("failed to load plan: %v", err)
	}
	var items []models.DecisionItem
	if err := db.Where("plan_id = ?", planID).Find(&items).Error; err != nil {
		t.Fatalf("failed to load decision items: %v", err)
	}
	if sum := budget.Subtotal(items); sum != plan.TotalCents {
		t.Errorf("plan cache %d does not match selected sum %d", plan.TotalCents, sum)
	}
	return plan.TotalCents
}
