package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"weddingbudget/internal/budget"
	apperrors "weddingbudget/internal/errors"
	"weddingbudget/internal/logger"
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
	"weddingbudget/internal/repository"
)

// decisionService handles guarded approve, swap and undo of decision items.
type decisionService struct {
	*Backend
}

// NewDecisionService creates a new DecisionServicer.
func NewDecisionService(b *Backend) DecisionServicer {
	return &decisionService{Backend: b}
}

// Evaluate runs the redline guard for a proposed change without committing
// or locking anything.
func (s *decisionService) Evaluate(ctx context.Context, userID string, change DecisionChange) (*budget.Evaluation, error) {
	plan, items, err := s.loadPlan(ctx, s.Plans, userID, false)
	if err != nil {
		return nil, err
	}
	item := findItem(items, change.ItemID)
	if item == nil {
		return nil, apperrors.ErrDecisionNotFound
	}
	chosen, err := s.resolveOption(ctx, item, change.Option, change.OptionID)
	if err != nil {
		return nil, err
	}
	eval, err := budget.EvaluateChange(plan, items, item.ID, chosen)
	if err != nil {
		return nil, guardError(err)
	}
	return &eval, nil
}

// Approve commits an option to an item with status approved.
func (s *decisionService) Approve(ctx context.Context, userID string, change DecisionChange) (*CommitResult, error) {
	return s.commit(ctx, userID, change, models.DecisionStatusApproved)
}

// Swap commits an option to an item with status swapped.
func (s *decisionService) Swap(ctx context.Context, userID string, change DecisionChange) (*CommitResult, error) {
	return s.commit(ctx, userID, change, models.DecisionStatusSwapped)
}

// commit evaluates the change against the redline and writes it when it is
// allowed or overridden. A blocked change returns the evaluation together
// with ErrRedlineExceeded and leaves the plan untouched.
func (s *decisionService) commit(ctx context.Context, userID string, change DecisionChange, status models.DecisionStatus) (res *CommitResult, err error) {
	ctx, span := startSpan(ctx, "decision."+string(status), userID,
		attribute.String("decision.item_id", change.ItemID),
		attribute.Bool("decision.override", change.Override),
	)
	defer func() { endSpan(span, err) }()

	res = &CommitResult{}
	err = s.withPlanLock(ctx, userID, func() error {
		if _, err := s.ensurePlan(ctx, userID); err != nil {
			return err
		}
		_, items, err := s.loadPlan(ctx, s.Plans, userID, false)
		if err != nil {
			return err
		}
		current := findItem(items, change.ItemID)
		if current == nil {
			return apperrors.ErrDecisionNotFound
		}
		chosen, err := s.resolveOption(ctx, current, change.Option, change.OptionID)
		if err != nil {
			return err
		}

		var rec budget.UndoRecord
		err = s.Plans.Transaction(ctx, func(tx repository.PlanStore) error {
			plan, items, err := s.loadPlan(ctx, tx, userID, true)
			if err != nil {
				return err
			}
			item := findItem(items, change.ItemID)
			if item == nil {
				return apperrors.ErrDecisionNotFound
			}

			eval, err := budget.EvaluateChange(plan, items, item.ID, chosen)
			if err != nil {
				return guardError(err)
			}
			res.Evaluation = eval
			if !eval.Allowed && !change.Override {
				res.Totals = money.ComputeFees(eval.CurrentSubtotal, plan.Rates())
				return nil
			}

			rec = budget.RecordFor(item, chosen)
			budget.Commit(item, chosen, status)
			if err := tx.SaveDecision(ctx, item); err != nil {
				return storeError(err, apperrors.ErrDecisionNotFound)
			}
			totals, changed := budget.Reconcile(plan, items)
			if changed {
				if err := tx.UpdatePlan(ctx, plan, "total_cents"); err != nil {
					return storeError(err, apperrors.ErrPlanNotFound)
				}
			}

			committed := *item
			res.Committed = true
			res.Overridden = !eval.Allowed
			res.Totals = totals
			res.Item = &committed
			return nil
		})
		if err != nil {
			return storeError(err, apperrors.ErrPlanNotFound)
		}

		if !res.Committed {
			logger.Get().Infow("redline intercepted",
				"user_id", userID,
				"item_id", change.ItemID,
				"option_id", chosen.ID,
				"proposed_subtotal", res.Evaluation.ProposedSubtotal,
				"redline_cents", res.Evaluation.RedlineCents,
				"overage_cents", res.Evaluation.OverageCents,
			)
			return apperrors.ErrRedlineExceeded
		}

		if res.Overridden {
			logger.Get().Warnw("redline overridden",
				"user_id", userID,
				"item_id", change.ItemID,
				"overage_cents", res.Evaluation.OverageCents,
			)
		}
		s.rememberUndo(ctx, change.SessionKey, rec)
		return nil
	})
	return res, err
}

// Undo restores the selection an item had before its last commit.
func (s *decisionService) Undo(ctx context.Context, userID string, req UndoRequest) (res *UndoResult, err error) {
	ctx, span := startSpan(ctx, "decision.undo", userID, attribute.String("decision.item_id", req.ItemID))
	defer func() { endSpan(span, err) }()

	err = s.withPlanLock(ctx, userID, func() error {
		if _, err := s.ensurePlan(ctx, userID); err != nil {
			return err
		}
		rec, err := s.pendingRecord(ctx, req.SessionKey)
		if err != nil {
			return err
		}
		if rec != nil && rec.ItemID != req.ItemID {
			rec = nil
		}

		_, items, err := s.loadPlan(ctx, s.Plans, userID, false)
		if err != nil {
			return err
		}
		current := findItem(items, req.ItemID)
		if current == nil {
			return apperrors.ErrDecisionNotFound
		}
		previous, err := s.resolvePrevious(ctx, current, req, rec)
		if err != nil {
			return err
		}

		err = s.Plans.Transaction(ctx, func(tx repository.PlanStore) error {
			plan, items, err := s.loadPlan(ctx, tx, userID, true)
			if err != nil {
				return err
			}
			item := findItem(items, req.ItemID)
			if item == nil {
				return apperrors.ErrDecisionNotFound
			}

			budget.Undo(item, previous, rec)
			if err := tx.SaveDecision(ctx, item); err != nil {
				return storeError(err, apperrors.ErrDecisionNotFound)
			}
			totals, changed := budget.Reconcile(plan, items)
			if changed {
				if err := tx.UpdatePlan(ctx, plan, "total_cents"); err != nil {
					return storeError(err, apperrors.ErrPlanNotFound)
				}
			}
			restored := *item
			res = &UndoResult{Totals: totals, Item: &restored, Restored: previous}
			return nil
		})
		if err != nil {
			return storeError(err, apperrors.ErrPlanNotFound)
		}

		if rec != nil {
			if err := s.UndoSlots.Clear(ctx, req.SessionKey); err != nil {
				logger.Get().Warnw("failed to clear undo slot", "user_id", userID, "error", err)
			}
		}
		return nil
	})
	return res, err
}

// PendingUndo returns the session's undo record, or nil when the slot is
// empty.
func (s *decisionService) PendingUndo(ctx context.Context, userID, sessionKey string) (*budget.UndoRecord, error) {
	return s.pendingRecord(ctx, sessionKey)
}

func (s *decisionService) pendingRecord(ctx context.Context, sessionKey string) (*budget.UndoRecord, error) {
	if sessionKey == "" {
		return nil, nil
	}
	rec, err := s.UndoSlots.Get(ctx, sessionKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	return rec, nil
}

// rememberUndo replaces the session's undo slot. A failure only costs the
// ability to undo, so it is logged and swallowed.
func (s *decisionService) rememberUndo(ctx context.Context, sessionKey string, rec budget.UndoRecord) {
	if sessionKey == "" {
		return
	}
	if err := s.UndoSlots.Put(ctx, sessionKey, rec); err != nil {
		logger.Get().Warnw("failed to store undo slot", "item_id", rec.ItemID, "error", err)
	}
}

// resolveOption picks the option a change refers to. A snapshot is used as
// given. An id is looked up on the item first, then in the catalog, where it
// must be an active entry of the item's category.
func (b *Backend) resolveOption(ctx context.Context, item *models.DecisionItem, snapshot *models.Option, optionID string) (models.Option, error) {
	if snapshot != nil {
		return normalize(*snapshot)
	}
	if optionID == "" {
		return models.Option{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "option or option_id is required")
	}
	if item.SelectedID == optionID {
		return item.SelectedOption(), nil
	}
	if alt, ok := item.FindAlternate(optionID); ok {
		return alt, nil
	}

	v, err := b.Catalog.FindVendorOption(ctx, optionID)
	if err != nil {
		return models.Option{}, storeError(err, apperrors.ErrOptionNotFound)
	}
	if v.Category != item.Category || !v.IsActive {
		return models.Option{}, apperrors.ErrOptionNotFound
	}
	return v.Snapshot(), nil
}

// resolvePrevious picks the option an undo restores: the caller's snapshot,
// an option id, or the session slot for this item.
func (s *decisionService) resolvePrevious(ctx context.Context, item *models.DecisionItem, req UndoRequest, rec *budget.UndoRecord) (models.Option, error) {
	switch {
	case req.PreviousOption != nil:
		return normalize(*req.PreviousOption)
	case req.PreviousOptionID != "":
		if rec != nil && rec.PrevSelected.ID == req.PreviousOptionID {
			return rec.PrevSelected, nil
		}
		opt, err := s.resolveOption(ctx, item, nil, req.PreviousOptionID)
		if errors.Is(err, apperrors.ErrOptionNotFound) {
			return models.Option{}, apperrors.ErrUndoNotAvailable
		}
		return opt, err
	case rec != nil:
		return rec.PrevSelected, nil
	}
	return models.Option{}, apperrors.ErrUndoNotAvailable
}

// normalize checks a caller snapshot's price and gives it non-nil tag and
// reason lists.
func normalize(o models.Option) (models.Option, error) {
	if err := money.CheckAmount(o.PriceCents); err != nil {
		return models.Option{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "price_cents is out of range")
	}
	if o.Tags == nil {
		o.Tags = []string{}
	}
	if o.Reasons == nil {
		o.Reasons = []string{}
	}
	return o, nil
}

// guardError maps a redline guard failure to an AppError.
func guardError(err error) error {
	if errors.Is(err, money.ErrAmountOutOfRange) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "option price or resulting subtotal is out of range")
	}
	return apperrors.ErrDecisionNotFound
}
