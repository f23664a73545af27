package budget

import "weddingbudget/internal/models"

// Commit makes chosen the item's selection and records status. The previous
// selection moves to the front of the alternates and chosen is removed from
// them, so no option is ever lost and none is duplicated. Re-committing the
// current selection only refreshes the snapshot and status.
//
// It returns the previous selection.
func Commit(item *models.DecisionItem, chosen models.Option, status models.DecisionStatus) models.Option {
	prev := item.SelectedOption()
	if prev.ID != chosen.ID {
		item.SetAlternates(promote(prev, item.Alternates(), chosen.ID))
	}
	item.SetSelected(chosen)
	item.Status = status
	item.DeltaCents = chosen.PriceCents - prev.PriceCents
	return prev
}

// UndoRecord is the state needed to reverse one commit on one item.
type UndoRecord struct {
	ItemID       string                `json:"item_id"`
	ChosenID     string                `json:"chosen_id"`
	PrevSelected models.Option         `json:"prev_selected"`
	PrevOptions  []models.Option       `json:"prev_options,omitempty"`
	PrevStatus   models.DecisionStatus `json:"prev_status"`
}

// RecordFor captures the state of item before chosen is committed to it.
func RecordFor(item *models.DecisionItem, chosen models.Option) UndoRecord {
	return UndoRecord{
		ItemID:       item.ID,
		ChosenID:     chosen.ID,
		PrevSelected: item.SelectedOption(),
		PrevOptions:  item.Alternates(),
		PrevStatus:   item.Status,
	}
}

// Undo restores previous as the item's selection and resets the status to
// pending. When rec still matches the item (its selection is the option rec
// committed), the exact prior alternates come back. Otherwise the current
// selection is kept as the first alternate, the same way Commit does it.
func Undo(item *models.DecisionItem, previous models.Option, rec *UndoRecord) {
	current := item.SelectedOption()
	if rec != nil && rec.ItemID == item.ID && rec.ChosenID == current.ID && rec.PrevSelected.ID == previous.ID {
		item.SetAlternates(rec.PrevOptions)
	} else if current.ID != previous.ID {
		item.SetAlternates(promote(current, item.Alternates(), previous.ID))
	}
	item.SetSelected(previous)
	item.Status = models.DecisionStatusPending
	item.DeltaCents = previous.PriceCents - current.PriceCents
}

// promote returns alts with head first, dropping any entry whose id is
// head's or drop's.
func promote(head models.Option, alts []models.Option, drop string) []models.Option {
	out := make([]models.Option, 0, len(alts)+1)
	if head.ID != "" {
		out = append(out, head)
	}
	for _, o := range alts {
		if o.ID == drop || o.ID == head.ID {
			continue
		}
		out = append(out, o)
	}
	return out
}
