package models

import "gorm.io/datatypes"

// DecisionStatus represents how the current selection of a decision item was reached
type DecisionStatus string

const (
	DecisionStatusPending      DecisionStatus = "pending"
	DecisionStatusApproved     DecisionStatus = "approved"
	DecisionStatusSwapped      DecisionStatus = "swapped"
	DecisionStatusAutoApproved DecisionStatus = "auto_approved"
)

// DecisionItem is one vendor category line in a plan. Selected is always set
// once the plan exists, and Options never holds an option with SelectedID.
type DecisionItem struct {
	Base
	PlanID      string                      `gorm:"type:uuid;not null;index" json:"plan_id"`
	Category    Category                    `gorm:"not null" json:"category"`
	ImpactScore int                         `gorm:"not null;default:0" json:"impact_score"`
	Status      DecisionStatus              `gorm:"not null;default:'pending'" json:"status"`
	SelectedID  string                      `gorm:"not null" json:"selected_id"`
	Selected    datatypes.JSONType[Option]  `gorm:"not null" json:"selected"`
	Options     datatypes.JSONSlice[Option] `json:"options"`
	DeltaCents  int64                       `gorm:"not null;default:0" json:"delta_cents"`
}

// SelectedOption returns the snapshot of the current selection.
func (d *DecisionItem) SelectedOption() Option {
	return d.Selected.Data()
}

// SetSelected replaces the current selection snapshot.
func (d *DecisionItem) SetSelected(o Option) {
	d.Selected = datatypes.NewJSONType(o)
	d.SelectedID = o.ID
}

// Alternates returns a copy of the alternate options in order.
func (d *DecisionItem) Alternates() []Option {
	out := make([]Option, len(d.Options))
	copy(out, d.Options)
	return out
}

// SetAlternates replaces the alternate options.
func (d *DecisionItem) SetAlternates(opts []Option) {
	if opts == nil {
		opts = []Option{}
	}
	d.Options = datatypes.NewJSONSlice(opts)
}

// FindAlternate returns the alternate with the given id.
func (d *DecisionItem) FindAlternate(id string) (Option, bool) {
	for _, o := range d.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
