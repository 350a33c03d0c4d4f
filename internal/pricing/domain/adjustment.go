package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BulkAdjustment is the administrative bulk schedule operation: a percentage
// change across tier rates, discount-field updates and activation toggling,
// applied to every schedule matching the filter. The engine itself never
// mutates schedules; it simply recalculates against whatever is active at
// call time.
type BulkAdjustment struct {
	// Filter. Empty fields match everything.
	ProductIDs []uuid.UUID `json:"product_ids,omitempty"`
	CountryID  string      `json:"country_id,omitempty"`
	Currency   string      `json:"currency,omitempty"`

	// RateChangePct shifts every priced tier rate by the given fraction
	// (0.10 = +10%, -0.05 = -5%). Zero leaves rates untouched.
	RateChangePct decimal.Decimal `json:"rate_change_pct"`

	// Discount-field updates. Nil leaves the field untouched.
	WeeklyDiscountPct     *decimal.Decimal `json:"weekly_discount_pct,omitempty"`
	MonthlyDiscountPct    *decimal.Decimal `json:"monthly_discount_pct,omitempty"`
	BulkDiscountPct       *decimal.Decimal `json:"bulk_discount_pct,omitempty"`
	BulkDiscountThreshold *int             `json:"bulk_discount_threshold,omitempty"`

	// Active toggles the active flag. Nil leaves it untouched.
	Active *bool `json:"active,omitempty"`
}

// IsNoop reports whether the adjustment would change nothing
func (a *BulkAdjustment) IsNoop() bool {
	return a.RateChangePct.IsZero() &&
		a.WeeklyDiscountPct == nil &&
		a.MonthlyDiscountPct == nil &&
		a.BulkDiscountPct == nil &&
		a.BulkDiscountThreshold == nil &&
		a.Active == nil
}

// Validate checks the adjustment parameters
func (a *BulkAdjustment) Validate() error {
	if a.IsNoop() {
		return NewValidationError("bulk adjustment changes nothing", "")
	}
	minusOne := decimal.NewFromInt(-1)
	if a.RateChangePct.LessThanOrEqual(minusOne) {
		return NewValidationError("rate change cannot zero out rates", a.RateChangePct.String())
	}
	one := decimal.NewFromInt(1)
	for name, pct := range map[string]*decimal.Decimal{
		"weekly_discount_pct":  a.WeeklyDiscountPct,
		"monthly_discount_pct": a.MonthlyDiscountPct,
		"bulk_discount_pct":    a.BulkDiscountPct,
	} {
		if pct != nil && (pct.IsNegative() || pct.GreaterThanOrEqual(one)) {
			return NewConfigurationError(name+" must be in [0, 1)", pct.String())
		}
	}
	if a.BulkDiscountThreshold != nil && *a.BulkDiscountThreshold < 0 {
		return NewConfigurationError("bulk discount threshold must not be negative", "")
	}
	return nil
}
