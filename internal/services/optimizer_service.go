package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"weddingbudget/internal/budget"
	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/logger"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/repository"
)

// optimizerService runs the greedy optimizer and commits its swaps.
type optimizerService struct {
	*Backend
}

// NewOptimizerService creates a new OptimizerServicer.
func NewOptimizerService(b *Backend) OptimizerServicer {
	return &optimizerService{Backend: b}
}

// OptimizeToRedline swaps cheaper alternates into the plan until its
// subtotal is at or under targetCents, or the plan redline when targetCents
// is nil. Each swap is committed in its own transaction, so a store failure
// part way leaves the earlier swaps in place and returns the error.
func (s *optimizerService) OptimizeToRedline(ctx context.Context, userID, sessionKey string, targetCents *int64) (view *OptimizeView, err error) {
	if targetCents != nil && money.CheckAmount(*targetCents) != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target_cents must be between 0 and 1000000000000")
	}
	ctx, span := startSpan(ctx, "plan.optimize", userID)
	defer func() { endSpan(span, err) }()

	err = s.withPlanLock(ctx, userID, func() error {
		plan, err := s.ensurePlan(ctx, userID)
		if err != nil {
			return err
		}
		items, err := s.Plans.ListDecisions(ctx, plan.ID)
		if err != nil {
			return storeError(err, apperrors.ErrPlanNotFound)
		}

		target := plan.RedlineCents
		if targetCents != nil {
			target = *targetCents
		}
		result := budget.Optimize(items, budget.OptimizeParams{
			TargetCents: target,
			Vibe:        plan.Vibe(),
			Excluded:    s.Defaults.Excluded,
		})
		span.SetAttributes(
			attribute.Int64("optimize.target_cents", target),
			attribute.Int("optimize.candidates", result.Candidates),
			attribute.Int("optimize.applied", len(result.Applied)),
		)

		var totals money.Totals
		for i, swap := range result.Applied {
			totals, err = s.applySwap(ctx, userID, swap)
			if err != nil {
				logger.Get().Errorw("optimizer swap failed",
					"user_id", userID,
					"item_id", swap.ItemID,
					"committed", i,
					"error", err,
				)
				s.dropStaleUndo(ctx, sessionKey, result.Applied[:i])
				return err
			}
		}
		if len(result.Applied) == 0 {
			current, err := s.view(ctx, s.Plans, plan)
			if err != nil {
				return err
			}
			totals = current.Totals
		}
		s.dropStaleUndo(ctx, sessionKey, result.Applied)

		logger.Get().Infow("optimizer finished",
			"user_id", userID,
			"target_cents", target,
			"applied", len(result.Applied),
			"saved", result.Saved(),
			"reached_target", result.ReachedTarget,
		)
		view = &OptimizeView{
			Applied:       result.Applied,
			Totals:        totals,
			Saved:         result.Saved(),
			TargetCents:   target,
			ReachedTarget: result.ReachedTarget,
			Message:       result.Message(),
		}
		return nil
	})
	return view, err
}

// applySwap commits one optimizer swap and returns the reconciled totals.
func (s *optimizerService) applySwap(ctx context.Context, userID string, swap budget.Swap) (money.Totals, error) {
	var totals money.Totals
	err := s.Plans.Transaction(ctx, func(tx repository.PlanStore) error {
		plan, items, err := s.loadPlan(ctx, tx, userID, true)
		if err != nil {
			return err
		}
		item := findItem(items, swap.ItemID)
		if item == nil {
			return apperrors.ErrDecisionNotFound
		}
		to, ok := item.FindAlternate(swap.To.ID)
		if !ok {
			return apperrors.ErrOptionNotFound
		}

		budget.Commit(item, to, models.DecisionStatusAutoApproved)
		if err := tx.SaveDecision(ctx, item); err != nil {
			return storeError(err, apperrors.ErrDecisionNotFound)
		}
		var changed bool
		totals, changed = budget.Reconcile(plan, items)
		if changed {
			if err := tx.UpdatePlan(ctx, plan, "total_cents"); err != nil {
				return storeError(err, apperrors.ErrPlanNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return money.Totals{}, storeError(err, apperrors.ErrPlanNotFound)
	}
	return totals, nil
}

// dropStaleUndo empties the session's undo slot when it points at an item
// the optimizer just changed.
func (s *optimizerService) dropStaleUndo(ctx context.Context, sessionKey string, applied []budget.Swap) {
	if sessionKey == "" || len(applied) == 0 {
		return
	}
	rec, err := s.UndoSlots.Get(ctx, sessionKey)
	if err != nil || rec == nil {
		return
	}
	for _, swap := range applied {
		if swap.ItemID == rec.ItemID {
			if err := s.UndoSlots.Clear(ctx, sessionKey); err != nil {
				logger.Get().Warnw("failed to clear stale undo slot", "item_id", rec.ItemID, "error", err)
			}
			return
		}
	}
}
