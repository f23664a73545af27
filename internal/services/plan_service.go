package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"weddingbudget/internal/budget"
	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
)

// planService handles plan-level reads and settings.
type planService struct {
	*Backend
}

// NewPlanService creates a new PlanServicer.
func NewPlanService(b *Backend) PlanServicer {
	return &planService{Backend: b}
}

// GetPlan returns the user's plan, creating it on first access. A stale
// subtotal cache is corrected and persisted.
func (s *planService) GetPlan(ctx context.Context, userID string) (view *PlanView, err error) {
	ctx, span := startSpan(ctx, "plan.get", userID)
	defer func() { endSpan(span, err) }()

	err = s.withPlanLock(ctx, userID, func() error {
		plan, err := s.ensurePlan(ctx, userID)
		if err != nil {
			return err
		}
		view, err = s.view(ctx, s.Plans, plan)
		return err
	})
	return view, err
}

// SetRedline updates the plan ceiling, creating the plan if needed.
func (s *planService) SetRedline(ctx context.Context, userID string, redlineCents int64) (view *PlanView, err error) {
	if err := money.CheckAmount(redlineCents); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "redline_cents must be between 0 and 1000000000000")
	}
	ctx, span := startSpan(ctx, "plan.set_redline", userID, attribute.Int64("plan.redline_cents", redlineCents))
	defer func() { endSpan(span, err) }()

	err = s.withPlanLock(ctx, userID, func() error {
		plan, err := s.ensurePlan(ctx, userID)
		if err != nil {
			return err
		}
		plan.RedlineCents = redlineCents
		if err := s.Plans.UpdatePlan(ctx, plan, "redline_cents"); err != nil {
			return storeError(err, apperrors.ErrPlanNotFound)
		}
		view, err = s.view(ctx, s.Plans, plan)
		return err
	})
	return view, err
}

// UpdateSummary replaces the plan's preference summary. Date windows are
// replaced only when windows is non-nil.
func (s *planService) UpdateSummary(ctx context.Context, userID string, summary models.PlanSummary, windows []models.DateWindow) (view *PlanView, err error) {
	ctx, span := startSpan(ctx, "plan.update_summary", userID)
	defer func() { endSpan(span, err) }()

	err = s.withPlanLock(ctx, userID, func() error {
		plan, err := s.ensurePlan(ctx, userID)
		if err != nil {
			return err
		}
		plan.Summary = datatypes.NewJSONType(summary)
		columns := []string{"summary"}
		if windows != nil {
			plan.DateWindows = datatypes.NewJSONSlice(windows)
			columns = append(columns, "date_windows")
		}
		if err := s.Plans.UpdatePlan(ctx, plan, columns...); err != nil {
			return storeError(err, apperrors.ErrPlanNotFound)
		}
		view, err = s.view(ctx, s.Plans, plan)
		return err
	})
	return view, err
}

// UpdateRates sets the plan's tax, service and gratuity multipliers.
func (s *planService) UpdateRates(ctx context.Context, userID string, rates money.Rates) (view *PlanView, err error) {
	if err := rates.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	ctx, span := startSpan(ctx, "plan.update_rates", userID)
	defer func() { endSpan(span, err) }()

	err = s.withPlanLock(ctx, userID, func() error {
		plan, err := s.ensurePlan(ctx, userID)
		if err != nil {
			return err
		}
		plan.TaxPct = rates.TaxPct
		plan.ServicePct = rates.ServicePct
		plan.GratuityPct = rates.GratuityPct
		if err := s.Plans.UpdatePlan(ctx, plan, "tax_pct", "service_pct", "gratuity_pct"); err != nil {
			return storeError(err, apperrors.ErrPlanNotFound)
		}
		view, err = s.view(ctx, s.Plans, plan)
		return err
	})
	return view, err
}

// GetDiff projects the plan's totals for a proposed subtotal. It never
// creates or modifies a plan.
func (s *planService) GetDiff(ctx context.Context, userID string, proposedSubtotal *int64) (*budget.Diff, error) {
	if proposedSubtotal != nil && money.CheckAmount(*proposedSubtotal) != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "proposed subtotal must be between 0 and 1000000000000")
	}
	plan, items, err := s.loadPlan(ctx, s.Plans, userID, false)
	if err != nil {
		return nil, err
	}
	diff := budget.Project(plan, items, proposedSubtotal)
	return &diff, nil
}
