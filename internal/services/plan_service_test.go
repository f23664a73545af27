package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"weddingbudget/internal/lock"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/repository"
	"weddingbudget/internal/session"
	"weddingbudget/internal/testutil"
)

var (
	defaultRates = money.Rates{TaxPct: 0.09, ServicePct: 0.10, GratuityPct: 0.15}
	noFees       = money.Rates{}
)

func newTestBackend(db *gorm.DB) *Backend {
	return &Backend{
		Plans:     repository.NewPlanStore(db),
		Catalog:   repository.NewCatalogStore(db),
		Locker:    lock.NewMemoryLocker(time.Second),
		UndoSlots: session.NewMemoryStore(time.Minute),
		Defaults: PlanDefaults{
			RedlineCents: 4_000_000,
			Rates:        defaultRates,
			Excluded:     []models.Category{models.CategoryLead},
		},
	}
}

func TestGetPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_default_plan_on_first_access", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))
		userID := testutil.NewUserID()

		view, err := svc.GetPlan(ctx, userID)
		testutil.AssertNoError(t, err)

		if view.Plan.RedlineCents != 4_000_000 || view.Plan.Status != models.PlanStatusPreview {
			t.Errorf("unexpected plan defaults %+v", view.Plan)
		}
		want := []models.Category{
			models.CategoryLead, models.CategoryVenue, models.CategoryFlorals,
			models.CategoryPhoto, models.CategoryMusic, models.CategoryRentals,
		}
		if len(view.Decisions) != len(want) {
			t.Fatalf("expected %d decisions, got %d", len(want), len(view.Decisions))
		}
		for i, c := range want {
			if view.Decisions[i].Category != c {
				t.Errorf("position %d: expected %s, got %s", i, c, view.Decisions[i].Category)
			}
		}
		venue := view.Decisions[1]
		if venue.SelectedID != "garden-loft" || len(venue.Alternates()) != 2 {
			t.Errorf("unexpected venue line %+v", venue)
		}
		if view.Totals.Subtotal != 2_560_000 {
			t.Errorf("expected subtotal 2560000, got %d", view.Totals.Subtotal)
		}
		if view.Totals.Total != 3_430_400 {
			t.Errorf("expected total 3430400, got %d", view.Totals.Total)
		}
		testutil.AssertSubtotalCache(t, db, view.Plan.ID)
	})

	t.Run("second_access_reuses_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))
		userID := testutil.NewUserID()

		first, err := svc.GetPlan(ctx, userID)
		testutil.AssertNoError(t, err)
		second, err := svc.GetPlan(ctx, userID)
		testutil.AssertNoError(t, err)

		if first.Plan.ID != second.Plan.ID {
			t.Errorf("expected the same plan, got %s and %s", first.Plan.ID, second.Plan.ID)
		}
		if first.Totals != second.Totals {
			t.Errorf("expected identical totals, got %+v and %+v", first.Totals, second.Totals)
		}
	})

	t.Run("uses_catalog_when_seeded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		b := newTestBackend(db)
		testutil.AssertNoError(t, NewCatalogService(b.Catalog).EnsureDefaults(ctx))
		testutil.AssertNoError(t, db.Model(&models.VendorOption{}).Where("id = ?", "garden-loft").
			Update("price_cents", 1_100_000).Error)

		view, err := NewPlanService(b).GetPlan(ctx, testutil.NewUserID())
		testutil.AssertNoError(t, err)
		if got := view.Decisions[1].SelectedOption().PriceCents; got != 1_100_000 {
			t.Errorf("expected catalog price 1100000, got %d", got)
		}
	})

	t.Run("repairs_stale_cache", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userID := testutil.NewUserID()
		items := []models.DecisionItem{testutil.Item(models.CategoryVenue, 9, testutil.Option("hall", 1_000_000))}
		plan := testutil.CreateTestPlan(t, db, userID, 4_000_000, noFees, items)
		testutil.AssertNoError(t, db.Model(plan).Update("total_cents", 1).Error)

		view, err := NewPlanService(newTestBackend(db)).GetPlan(ctx, userID)
		testutil.AssertNoError(t, err)
		if view.Plan.TotalCents != 1_000_000 {
			t.Errorf("expected repaired cache 1000000, got %d", view.Plan.TotalCents)
		}
		if got := testutil.AssertSubtotalCache(t, db, plan.ID); got != 1_000_000 {
			t.Errorf("expected stored cache 1000000, got %d", got)
		}
	})

	t.Run("busy_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		b := newTestBackend(db)
		b.Locker = lock.NewMemoryLocker(10 * time.Millisecond)
		userID := testutil.NewUserID()

		release, err := b.Locker.Acquire(ctx, lock.PlanKey(userID))
		testutil.AssertNoError(t, err)
		defer release()

		_, err = NewPlanService(b).GetPlan(ctx, userID)
		testutil.AssertAppError(t, err, "PLAN_BUSY")
		testutil.AssertRetryable(t, err, true)
	})
}

func TestSetRedline(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_missing_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))

		view, err := svc.SetRedline(ctx, testutil.NewUserID(), 3_000_000)
		testutil.AssertNoError(t, err)
		if view.Plan.RedlineCents != 3_000_000 {
			t.Errorf("expected redline 3000000, got %d", view.Plan.RedlineCents)
		}
		if len(view.Decisions) == 0 {
			t.Error("expected default decisions")
		}
	})

	t.Run("updates_existing_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userID := testutil.NewUserID()
		plan := testutil.CreateTestPlan(t, db, userID, 4_000_000, noFees, nil)
		svc := NewPlanService(newTestBackend(db))

		_, err := svc.SetRedline(ctx, userID, 0)
		testutil.AssertNoError(t, err)

		var stored models.Plan
		testutil.AssertNoError(t, db.First(&stored, "id = ?", plan.ID).Error)
		if stored.RedlineCents != 0 {
			t.Errorf("expected redline 0, got %d", stored.RedlineCents)
		}
	})

	t.Run("negative", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))

		_, err := svc.SetRedline(ctx, testutil.NewUserID(), -1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("over_ceiling", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))

		_, err := svc.SetRedline(ctx, testutil.NewUserID(), money.MaxCents+1)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateRates(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes_totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userID := testutil.NewUserID()
		items := []models.DecisionItem{testutil.Item(models.CategoryVenue, 9, testutil.Option("hall", 100))}
		testutil.CreateTestPlan(t, db, userID, 4_000_000, noFees, items)
		svc := NewPlanService(newTestBackend(db))

		view, err := svc.UpdateRates(ctx, userID, money.Rates{TaxPct: 0.0825})
		testutil.AssertNoError(t, err)
		if view.Totals.Tax != 8 || view.Totals.Total != 108 {
			t.Errorf("expected tax 8 and total 108, got %+v", view.Totals)
		}
		if view.Plan.TaxPct != 0.0825 {
			t.Errorf("expected tax pct stored, got %v", view.Plan.TaxPct)
		}
	})

	t.Run("out_of_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))

		_, err := svc.UpdateRates(ctx, testutil.NewUserID(), money.Rates{GratuityPct: 1.5})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateSummary(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewPlanService(newTestBackend(db))
	userID := testutil.NewUserID()

	view, err := svc.UpdateSummary(ctx, userID, models.PlanSummary{Vibe: []string{"garden"}, Guests: 120}, nil)
	testutil.AssertNoError(t, err)
	if got := view.Plan.Vibe(); len(got) != 1 || got[0] != "garden" {
		t.Errorf("expected vibe [garden], got %v", got)
	}
	if len(view.Plan.DateWindows) != 2 {
		t.Errorf("expected default date windows kept, got %v", view.Plan.DateWindows)
	}

	windows := []models.DateWindow{{Label: "Jun", Score: 0.5}}
	view, err = svc.UpdateSummary(ctx, userID, models.PlanSummary{}, windows)
	testutil.AssertNoError(t, err)
	if len(view.Plan.DateWindows) != 1 || view.Plan.DateWindows[0].Label != "Jun" {
		t.Errorf("expected replaced date windows, got %v", view.Plan.DateWindows)
	}
	if len(view.Plan.Vibe()) != 0 {
		t.Errorf("expected cleared vibe, got %v", view.Plan.Vibe())
	}
}

func TestGetDiff(t *testing.T) {
	ctx := context.Background()

	t.Run("missing_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))

		_, err := svc.GetDiff(ctx, testutil.NewUserID(), nil)
		testutil.AssertAppError(t, err, "PLAN_NOT_FOUND")
	})

	t.Run("projects_without_mutation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userID := testutil.NewUserID()
		items := []models.DecisionItem{testutil.Item(models.CategoryVenue, 9, testutil.Option("hall", 3_800_000))}
		plan := testutil.CreateTestPlan(t, db, userID, 4_000_000, defaultRates, items)
		svc := NewPlanService(newTestBackend(db))

		proposed := int64(4_200_000)
		diff, err := svc.GetDiff(ctx, userID, &proposed)
		testutil.AssertNoError(t, err)
		if diff.Current.Subtotal != 3_800_000 || diff.Current.Total != 5_092_000 {
			t.Errorf("unexpected current totals %+v", diff.Current)
		}
		if diff.Proposed.Subtotal != 4_200_000 || diff.Proposed.Total != 5_628_000 {
			t.Errorf("unexpected proposed totals %+v", diff.Proposed)
		}
		if got := testutil.AssertSubtotalCache(t, db, plan.ID); got != 3_800_000 {
			t.Errorf("expected cache untouched, got %d", got)
		}
	})

	t.Run("nil_mirrors_current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		userID := testutil.NewUserID()
		testutil.CreateTestPlan(t, db, userID, 4_000_000, defaultRates, nil)
		svc := NewPlanService(newTestBackend(db))

		diff, err := svc.GetDiff(ctx, userID, nil)
		testutil.AssertNoError(t, err)
		if diff.Current != diff.Proposed {
			t.Errorf("expected mirrored totals, got %+v", diff)
		}
	})

	t.Run("negative_proposal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))

		proposed := int64(-5)
		_, err := svc.GetDiff(ctx, testutil.NewUserID(), &proposed)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("proposal_over_ceiling", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPlanService(newTestBackend(db))

		proposed := money.MaxCents + 1
		_, err := svc.GetDiff(ctx, testutil.NewUserID(), &proposed)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}
