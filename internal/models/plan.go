package models

import (
	"gorm.io/datatypes"

	"weddingbudget/internal/money"
)

// PlanStatus represents the lifecycle state of a plan
type PlanStatus string

const (
	PlanStatusPreview  PlanStatus = "preview"
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// DateWindow is a candidate wedding date range with a fit score in [0,1].
type DateWindow struct {
	Label string  `json:"label" binding:"required,max=50"`
	Score float64 `json:"score" binding:"gte=0,lte=1"`
}

// PlanSummary holds the couple's stated preferences. Only Vibe feeds the
// optimizer; the rest is carried for the presentation layer.
type PlanSummary struct {
	Vibe                []string           `json:"vibe,omitempty" binding:"omitempty,max=20,dive,style_tag"`
	Guests              int                `json:"guests,omitempty" binding:"gte=0"`
	Month               int                `json:"month,omitempty" binding:"gte=0,lte=12"`
	Season              string             `json:"season,omitempty"`
	DateFlex            string             `json:"date_flex,omitempty"`
	Regions             []string           `json:"regions,omitempty"`
	Palette             string             `json:"palette,omitempty"`
	Formality           string             `json:"formality,omitempty"`
	Priorities          []string           `json:"priorities,omitempty"`
	Optimize            string             `json:"optimize,omitempty"`
	Traditions          []string           `json:"traditions,omitempty"`
	Accessibility       []string           `json:"accessibility,omitempty"`
	MustHaves           string             `json:"must_haves,omitempty"`
	NoGos               string             `json:"no_gos,omitempty"`
	Weights             map[string]float64 `json:"weights,omitempty" binding:"omitempty,dive,gte=0,lte=1"`
	VenuePreference     string             `json:"venue_preference,omitempty"`
	BaselineBudgetCents int64              `json:"baseline_budget_cents,omitempty" binding:"gte=0,lte=1000000000000"`
}

// Plan is one couple's budget plan. TotalCents caches the subtotal of the
// selected options and is refreshed after every decision change.
type Plan struct {
	Base
	UserID       string                          `gorm:"not null;uniqueIndex" json:"user_id"`
	RedlineCents int64                           `gorm:"not null" json:"redline_cents"`
	TaxPct       float64                         `gorm:"not null;default:0" json:"tax_pct"`
	ServicePct   float64                         `gorm:"not null;default:0" json:"service_pct"`
	GratuityPct  float64                         `gorm:"not null;default:0" json:"gratuity_pct"`
	TotalCents   int64                           `gorm:"not null;default:0" json:"total_cents"`
	Status       PlanStatus                      `gorm:"not null;default:'preview'" json:"status"`
	Summary      datatypes.JSONType[PlanSummary] `json:"summary"`
	DateWindows  datatypes.JSONSlice[DateWindow] `json:"date_windows"`
}

// Rates returns the plan's fee multipliers.
func (p *Plan) Rates() money.Rates {
	return money.Rates{TaxPct: p.TaxPct, ServicePct: p.ServicePct, GratuityPct: p.GratuityPct}
}

// Vibe returns the preferred style tags used to constrain automatic swaps.
func (p *Plan) Vibe() []string {
	return p.Summary.Data().Vibe
}
