package budget

import (
	"errors"

	"weddingbudget/internal/models"
	"weddingbudget/internal/money"
)

// ErrItemNotFound is returned when an item id is not part of the plan.
var ErrItemNotFound = errors.New("budget: decision item not found")

// Verdict is the outcome of a redline check.
type Verdict string

const (
	VerdictAllowed Verdict = "allowed"
	VerdictBlocked Verdict = "blocked"
)

// Evaluation describes what a proposed selection change would do to the plan.
type Evaluation struct {
	ItemID           string        `json:"item_id"`
	Verdict          Verdict       `json:"verdict"`
	Allowed          bool          `json:"allowed"`
	Option           models.Option `json:"option"`
	CurrentSubtotal  int64         `json:"current_subtotal"`
	ProposedSubtotal int64         `json:"proposed_subtotal"`
	ProposedTotals   money.Totals  `json:"proposed_totals"`
	RedlineCents     int64         `json:"redline_cents"`
	OverageCents     int64         `json:"overage_cents"`
}

// EvaluateChange checks a proposed selection for itemID against the plan's
// redline. The comparison is on subtotal: a change is allowed when the
// proposed subtotal is at or under the redline. A blocked result carries the
// overage as proposed grand total minus redline. A price or resulting
// subtotal outside [0, money.MaxCents] is rejected with
// money.ErrAmountOutOfRange.
func EvaluateChange(plan *models.Plan, items []models.DecisionItem, itemID string, proposed models.Option) (Evaluation, error) {
	idx := indexOf(items, itemID)
	if idx < 0 {
		return Evaluation{}, ErrItemNotFound
	}
	if err := money.CheckAmount(proposed.PriceCents); err != nil {
		return Evaluation{}, err
	}

	current, err := CheckedSubtotal(items)
	if err != nil {
		return Evaluation{}, err
	}
	proposedSubtotal := current - items[idx].SelectedOption().PriceCents + proposed.PriceCents
	if err := money.CheckAmount(proposedSubtotal); err != nil {
		return Evaluation{}, err
	}
	totals := money.ComputeFees(proposedSubtotal, plan.Rates())

	eval := Evaluation{
		ItemID:           itemID,
		Option:           proposed,
		CurrentSubtotal:  current,
		ProposedSubtotal: proposedSubtotal,
		ProposedTotals:   totals,
		RedlineCents:     plan.RedlineCents,
	}
	if proposedSubtotal <= plan.RedlineCents {
		eval.Verdict = VerdictAllowed
		eval.Allowed = true
		return eval, nil
	}
	eval.Verdict = VerdictBlocked
	eval.OverageCents = totals.Total - plan.RedlineCents
	return eval, nil
}

func indexOf(items []models.DecisionItem, itemID string) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}
