package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"weddingbudget/internal/budget"
	"weddingbudget/internal/config"
	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/lock"
	"weddingbudget/internal/logger"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/repository"
	"weddingbudget/internal/session"
)

var tracer = otel.Tracer("weddingbudget/services")

// PlanDefaults are the settings a newly created plan starts with.
type PlanDefaults struct {
	RedlineCents int64
	Rates        money.Rates
	// Excluded categories are never swapped by the optimizer.
	Excluded []models.Category
}

// DefaultsFromConfig reads plan defaults from cfg.
func DefaultsFromConfig(cfg *config.Config) PlanDefaults {
	excluded := make([]models.Category, 0, len(cfg.ExcludedCategories))
	for _, c := range cfg.ExcludedCategories {
		excluded = append(excluded, models.Category(c))
	}
	return PlanDefaults{
		RedlineCents: cfg.DefaultRedlineCents,
		Rates: money.Rates{
			TaxPct:      cfg.DefaultTaxPct,
			ServicePct:  cfg.DefaultServicePct,
			GratuityPct: cfg.DefaultGratuityPct,
		},
		Excluded: excluded,
	}
}

// Backend bundles the stores and coordination primitives the plan services
// share.
type Backend struct {
	Plans     repository.PlanStore
	Catalog   repository.CatalogStore
	Locker    lock.Locker
	UndoSlots session.UndoStore
	Defaults  PlanDefaults
}

// withPlanLock runs fn while holding the user's plan lock.
func (b *Backend) withPlanLock(ctx context.Context, userID string, fn func() error) error {
	release, err := b.Locker.Acquire(ctx, lock.PlanKey(userID))
	if err != nil {
		if errors.Is(err, lock.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return apperrors.Wrap(apperrors.ErrPlanBusy, err)
		}
		return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	defer release()
	return fn()
}

// ensurePlan returns the user's plan, creating it with the default lines
// when it does not exist yet. Callers must hold the plan lock.
func (b *Backend) ensurePlan(ctx context.Context, userID string) (*models.Plan, error) {
	plan, err := b.Plans.FindPlanByUser(ctx, userID, false)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err, apperrors.ErrPlanNotFound)
	}

	items, err := b.defaultItems(ctx)
	if err != nil {
		return nil, err
	}
	plan = &models.Plan{
		UserID:       userID,
		RedlineCents: b.Defaults.RedlineCents,
		TaxPct:       b.Defaults.Rates.TaxPct,
		ServicePct:   b.Defaults.Rates.ServicePct,
		GratuityPct:  b.Defaults.Rates.GratuityPct,
		Status:       models.PlanStatusPreview,
	}
	plan.Summary = datatypes.NewJSONType(defaultSummary())
	plan.DateWindows = datatypes.NewJSONSlice(defaultDateWindows())
	for i := range items {
		plan.TotalCents += items[i].SelectedOption().PriceCents
	}

	if err := b.Plans.CreatePlan(ctx, plan, items); err != nil {
		return nil, storeError(err, apperrors.ErrPlanNotFound)
	}
	logger.Get().Infow("plan created", "user_id", userID, "plan_id", plan.ID, "decisions", len(items))
	return plan, nil
}

// defaultItems builds a new plan's lines from the active catalog, falling
// back to the built-in options for a category the catalog has nothing for.
func (b *Backend) defaultItems(ctx context.Context) ([]models.DecisionItem, error) {
	items := make([]models.DecisionItem, 0, len(defaultLines))
	for _, line := range defaultLines {
		opts, err := b.Catalog.DefaultOptions(ctx, line.Category)
		if err != nil {
			return nil, storeError(err, apperrors.ErrOptionNotFound)
		}
		if len(opts) == 0 {
			opts = line.Options
		}
		if item, ok := seedItem(line.Category, line.Impact, opts); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// loadPlan reads the plan and its items without creating anything.
func (b *Backend) loadPlan(ctx context.Context, store repository.PlanStore, userID string, forUpdate bool) (*models.Plan, []models.DecisionItem, error) {
	plan, err := store.FindPlanByUser(ctx, userID, forUpdate)
	if err != nil {
		return nil, nil, storeError(err, apperrors.ErrPlanNotFound)
	}
	items, err := store.ListDecisions(ctx, plan.ID)
	if err != nil {
		return nil, nil, storeError(err, apperrors.ErrPlanNotFound)
	}
	return plan, items, nil
}

// storeError maps a repository error to an AppError. AppErrors pass through
// unchanged and a missing row becomes notFound.
func storeError(err error, notFound *apperrors.AppError) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
}

// startSpan opens a span for a plan operation.
func startSpan(ctx context.Context, name, userID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("plan.user_id", userID))
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func findItem(items []models.DecisionItem, id string) *models.DecisionItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// view reconciles plan against its stored items and persists the subtotal
// cache when it drifted.
func (b *Backend) view(ctx context.Context, store repository.PlanStore, plan *models.Plan) (*PlanView, error) {
	items, err := store.ListDecisions(ctx, plan.ID)
	if err != nil {
		return nil, storeError(err, apperrors.ErrPlanNotFound)
	}
	totals, changed := budget.Reconcile(plan, items)
	if changed {
		logger.Get().Infow("plan subtotal cache refreshed", "plan_id", plan.ID, "subtotal", totals.Subtotal)
		if err := store.UpdatePlan(ctx, plan, "total_cents"); err != nil {
			return nil, storeError(err, apperrors.ErrPlanNotFound)
		}
	}
	return &PlanView{Plan: plan, Totals: totals, Decisions: items}, nil
}
