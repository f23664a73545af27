// Package money converts a plan subtotal into the fee breakdown shown to couples.
// All amounts are integer cents.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxCents bounds every price, subtotal and redline the engine accepts
// ($10 billion). Totals with every fee at 100% stay far inside int64.
const MaxCents int64 = 1_000_000_000_000

// ErrAmountOutOfRange is returned for an amount outside [0, MaxCents].
var ErrAmountOutOfRange = errors.New("money: amount out of range")

// CheckAmount reports ErrAmountOutOfRange when cents is negative or above
// MaxCents.
func CheckAmount(cents int64) error {
	if cents < 0 || cents > MaxCents {
		return fmt.Errorf("%w: %d cents", ErrAmountOutOfRange, cents)
	}
	return nil
}

// Rates are the fee multipliers applied to a subtotal. Each lies in [0,1].
type Rates struct {
	TaxPct      float64 `json:"tax_pct"`
	ServicePct  float64 `json:"service_pct"`
	GratuityPct float64 `json:"gratuity_pct"`
}

// Validate reports the first rate outside [0,1].
func (r Rates) Validate() error {
	checks := []struct {
		name string
		pct  float64
	}{{"tax", r.TaxPct}, {"service", r.ServicePct}, {"gratuity", r.GratuityPct}}
	for _, c := range checks {
		if !(c.pct >= 0 && c.pct <= 1) {
			return fmt.Errorf("%s rate %g outside [0,1]", c.name, c.pct)
		}
	}
	return nil
}

// Totals is the derived cost breakdown of a plan.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Service  int64 `json:"service"`
	Gratuity int64 `json:"gratuity"`
	Total    int64 `json:"total"`
}

// ComputeFees returns the totals for subtotal under r. Every fee is
// subtotal*pct rounded half up to a whole cent, computed in exact decimal
// arithmetic so the same inputs always reconcile to the same cents.
//
// A negative subtotal or an out-of-range rate is a caller bug and panics.
func ComputeFees(subtotal int64, r Rates) Totals {
	if subtotal < 0 {
		panic(fmt.Sprintf("money: negative subtotal %d", subtotal))
	}
	if err := r.Validate(); err != nil {
		panic("money: " + err.Error())
	}

	t := Totals{
		Subtotal: subtotal,
		Tax:      fee(subtotal, r.TaxPct),
		Service:  fee(subtotal, r.ServicePct),
		Gratuity: fee(subtotal, r.GratuityPct),
	}
	t.Total = t.Subtotal + t.Tax + t.Service + t.Gratuity
	return t
}

func fee(subtotal int64, pct float64) int64 {
	if pct == 0 || subtotal == 0 {
		return 0
	}
	// Round is half away from zero, which is half up for non-negative amounts.
	return decimal.NewFromInt(subtotal).Mul(decimal.NewFromFloat(pct)).Round(0).IntPart()
}
