package models

import (
	"time"

	"gorm.io/datatypes"
)

// VendorOption is a catalog entry that can be approved by id. Approving copies
// it into the decision item as an Option snapshot. SortOrder orders entries within
// a category; the lowest ranked active entry is a new plan's default pick.
type VendorOption struct {
	ID         string                      `gorm:"primaryKey" json:"id"`
	Category   Category                    `gorm:"not null;index" json:"category"`
	Name       string                      `gorm:"not null" json:"name"`
	PriceCents int64                       `gorm:"not null" json:"price_cents"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	Reasons    datatypes.JSONSlice[string] `json:"reasons"`
	SortOrder  int                         `gorm:"not null;default:0" json:"sort_order"`
	IsActive   bool                        `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// Snapshot converts the catalog row into an embeddable Option.
func (v *VendorOption) Snapshot() Option {
	return Option{
		ID:         v.ID,
		Name:       v.Name,
		PriceCents: v.PriceCents,
		Tags:       append([]string{}, v.Tags...),
		Reasons:    append([]string{}, v.Reasons...),
	}
}
