// Package budget is the plan cost engine: totals reconciliation, the redline
// guard, the commit and undo path for decision items, and the greedy
// optimizer. Everything here is pure over in-memory models; persistence and
// locking belong to the services package.
package budget

import (
	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
)

// Subtotal sums the selected option price of every item.
func Subtotal(items []models.DecisionItem) int64 {
	var sum int64
	for i := range items {
		sum += items[i].SelectedOption().PriceCents
	}
	return sum
}

// CheckedSubtotal is Subtotal with every price and the running sum held to
// [0, money.MaxCents], so the sum cannot overflow.
func CheckedSubtotal(items []models.DecisionItem) (int64, error) {
	var sum int64
	for i := range items {
		price := items[i].SelectedOption().PriceCents
		if err := money.CheckAmount(price); err != nil {
			return 0, err
		}
		sum += price
		if err := money.CheckAmount(sum); err != nil {
			return 0, err
		}
	}
	return sum, nil
}

// Reconcile recomputes the plan's totals from its items and refreshes the
// plan's cached TotalCents, which holds the subtotal. It reports whether the
// cache changed so callers only persist when needed.
func Reconcile(plan *models.Plan, items []models.DecisionItem) (money.Totals, bool) {
	totals := money.ComputeFees(Subtotal(items), plan.Rates())
	changed := plan.TotalCents != totals.Subtotal
	plan.TotalCents = totals.Subtotal
	return totals, changed
}

// Diff is a side-by-side projection of the current and a proposed subtotal.
type Diff struct {
	Current  money.Totals `json:"current"`
	Proposed money.Totals `json:"proposed"`
}

// Project returns current totals next to the totals for proposedSubtotal.
// A nil proposal mirrors the current totals.
func Project(plan *models.Plan, items []models.DecisionItem, proposedSubtotal *int64) Diff {
	current := money.ComputeFees(Subtotal(items), plan.Rates())
	if proposedSubtotal == nil {
		return Diff{Current: current, Proposed: current}
	}
	return Diff{Current: current, Proposed: money.ComputeFees(*proposedSubtotal, plan.Rates())}
}
