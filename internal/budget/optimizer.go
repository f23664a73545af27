package budget

import (
	"cmp"
	"fmt"
	"slices"

	"weddingbudget/internal/models"
)

const (
	// MessageNoSafeSwaps is returned when no substitution could be applied.
	MessageNoSafeSwaps = "No safe swaps found. Consider reducing guest count or opening a weekday."
	// MessageWithinBudget is returned when the plan already meets its target.
	MessageWithinBudget = "Plan is already within budget."
)

// OptimizeParams controls one optimizer pass.
type OptimizeParams struct {
	TargetCents int64
	Vibe        []string
	Excluded    []models.Category
}

// Swap is one substitution the optimizer selected.
type Swap struct {
	ItemID       string          `json:"item_id"`
	Category     models.Category `json:"category"`
	ImpactScore  int             `json:"impact_score"`
	From         models.Option   `json:"from"`
	To           models.Option   `json:"to"`
	SavingsCents int64           `json:"savings_cents"`
}

// OptimizeResult is the outcome of a pass, before anything is persisted.
type OptimizeResult struct {
	Applied       []Swap `json:"applied"`
	Candidates    int    `json:"candidates"`
	StartSubtotal int64  `json:"start_subtotal"`
	FinalSubtotal int64  `json:"final_subtotal"`
	TargetCents   int64  `json:"target_cents"`
	ReachedTarget bool   `json:"reached_target"`
}

// Saved returns how much the applied swaps take off the subtotal.
func (r OptimizeResult) Saved() int64 {
	return r.StartSubtotal - r.FinalSubtotal
}

// Message explains a result that needs the couple's attention. It is empty
// when the target was reached through swaps.
func (r OptimizeResult) Message() string {
	switch {
	case len(r.Applied) == 0 && r.StartSubtotal <= r.TargetCents:
		return MessageWithinBudget
	case len(r.Applied) == 0:
		return MessageNoSafeSwaps
	case !r.ReachedTarget:
		return fmt.Sprintf("Applied %d swap(s) but the plan is still %d cents over target. Consider reducing guest count or opening a weekday.",
			len(r.Applied), r.FinalSubtotal-r.TargetCents)
	}
	return ""
}

// Candidates lists every admissible swap in the order the optimizer tries
// them: owning item impact ascending, then savings descending. Remaining
// ties fall back to category, item id and alternate position, so the order
// never depends on how items were loaded.
//
// An alternate is admissible when its item's category is not excluded, it is
// strictly cheaper than the current selection, and it shares a tag with the
// vibe whenever a vibe is set.
func Candidates(items []models.DecisionItem, p OptimizeParams) []Swap {
	ordered := make([]*models.DecisionItem, 0, len(items))
	for i := range items {
		if !slices.Contains(p.Excluded, items[i].Category) {
			ordered = append(ordered, &items[i])
		}
	}
	slices.SortFunc(ordered, func(a, b *models.DecisionItem) int {
		return cmp.Or(
			cmp.Compare(a.ImpactScore, b.ImpactScore),
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.ID, b.ID),
		)
	})

	var out []Swap
	for _, item := range ordered {
		from := item.SelectedOption()
		for _, alt := range item.Options {
			if alt.PriceCents >= from.PriceCents {
				continue
			}
			if len(p.Vibe) > 0 && !alt.SharesTag(p.Vibe) {
				continue
			}
			out = append(out, Swap{
				ItemID:       item.ID,
				Category:     item.Category,
				ImpactScore:  item.ImpactScore,
				From:         from,
				To:           alt,
				SavingsCents: from.PriceCents - alt.PriceCents,
			})
		}
	}

	slices.SortStableFunc(out, func(a, b Swap) int {
		return cmp.Or(
			cmp.Compare(a.ImpactScore, b.ImpactScore),
			cmp.Compare(b.SavingsCents, a.SavingsCents),
		)
	})
	return out
}

// Optimize greedily picks swaps until the subtotal is at or under the target
// or candidates run out. Each item is swapped at most once per pass. This is
// a heuristic: it favors low-impact categories, not the fewest swaps.
func Optimize(items []models.DecisionItem, p OptimizeParams) OptimizeResult {
	start := Subtotal(items)
	res := OptimizeResult{
		StartSubtotal: start,
		FinalSubtotal: start,
		TargetCents:   p.TargetCents,
		Applied:       []Swap{},
	}

	cands := Candidates(items, p)
	res.Candidates = len(cands)

	swapped := make(map[string]bool)
	running := start
	for _, c := range cands {
		if running <= p.TargetCents {
			break
		}
		if swapped[c.ItemID] {
			continue
		}
		swapped[c.ItemID] = true
		running -= c.SavingsCents
		res.Applied = append(res.Applied, c)
	}

	res.FinalSubtotal = running
	res.ReachedTarget = running <= p.TargetCents
	return res
}
