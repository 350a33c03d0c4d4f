package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount names as they appear in the audit trail, in application order.
const (
	DiscountWeekly  = "weekly"
	DiscountMonthly = "monthly"
	DiscountBulk    = "bulk"
)

// DiscountLine is one applied discount, named for auditability.
type DiscountLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// CalculationRequest is the immutable input to a price calculation.
type CalculationRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	CountryID string    `json:"country_id"`
	// Currency is the target display currency; empty means the schedule's
	// base currency.
	Currency      string     `json:"currency,omitempty"`
	DurationHours int        `json:"rental_duration_hours"`
	Quantity      int        `json:"quantity,omitempty"`
	RentalStart   *time.Time `json:"rental_start_date,omitempty"`
	// PeakDate is resolved by the caller; the engine never consults a
	// calendar of its own.
	PeakDate               bool `json:"peak_date,omitempty"`
	IncludeSecurityDeposit bool `json:"include_security_deposit,omitempty"`
	ApplyDiscounts         bool `json:"apply_discounts,omitempty"`
}

// Normalize applies request defaults against the resolved schedule.
func (r *CalculationRequest) Normalize(schedule *PriceSchedule) {
	if r.Quantity == 0 {
		r.Quantity = 1
	}
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" && schedule != nil {
		r.Currency = schedule.Currency
	}
	r.CountryID = strings.ToUpper(strings.TrimSpace(r.CountryID))
}

// Validate checks request fields the engine cannot compute around.
func (r *CalculationRequest) Validate() error {
	if r.Quantity < 1 {
		return NewValidationError("quantity must be at least 1", fmt.Sprintf("%d", r.Quantity))
	}
	if r.DurationHours <= 0 {
		return NewValidationError("rental duration must be positive", fmt.Sprintf("%d hours", r.DurationHours))
	}
	return nil
}

// CalculationResult is the fully derived output of one price calculation.
// Amounts through TotalDiscount are in the schedule's base currency;
// Subtotal, SecurityDeposit and TotalAmount are in the requested currency,
// converted once at ExchangeRate.
type CalculationResult struct {
	ProductID           uuid.UUID `json:"product_id"`
	CountryID           string    `json:"country_id"`
	Currency            string    `json:"currency"`
	RentalDurationHours int       `json:"rental_duration_hours"`
	RentalDurationDays  int       `json:"rental_duration_days"`
	Quantity            int       `json:"quantity"`

	BaseRateType RateTier        `json:"base_rate_type"`
	BaseRate     decimal.Decimal `json:"base_rate"`
	BaseAmount   decimal.Decimal `json:"base_amount"`

	MarketAdjustmentFactor decimal.Decimal `json:"market_adjustment_factor"`
	SeasonalMultiplier     decimal.Decimal `json:"seasonal_multiplier"`
	AdjustedAmount         decimal.Decimal `json:"adjusted_amount"`

	WeeklyDiscount  decimal.Decimal `json:"weekly_discount"`
	MonthlyDiscount decimal.Decimal `json:"monthly_discount"`
	BulkDiscount    decimal.Decimal `json:"bulk_discount"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`

	Subtotal        decimal.Decimal `json:"subtotal"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate_used"`

	// Settlement rates, exposed for the downstream step that applies them
	// against actual return timing. Never part of the quote total.
	EarlyReturnFeePct    decimal.Decimal `json:"early_return_fee_pct"`
	LateReturnFeePerHour decimal.Decimal `json:"late_return_fee_per_hour"`

	// DiscountsApplied names the applied discounts in order, for audit and
	// dispute resolution in downstream billing.
	DiscountsApplied []string `json:"discounts_applied"`
}
