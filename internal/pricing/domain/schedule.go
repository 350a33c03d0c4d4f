package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateTier represents the granularity of rate selected for a rental duration.
type RateTier string

const (
	TierHourly  RateTier = "hourly"
	TierDaily   RateTier = "daily"
	TierWeekly  RateTier = "weekly"
	TierMonthly RateTier = "monthly"
)

// Tier thresholds in hours.
const (
	HoursPerDay   = 24
	HoursPerWeek  = 168
	HoursPerMonth = 720
)

// Hours returns the length of one tier unit in hours.
func (t RateTier) Hours() int {
	switch t {
	case TierHourly:
		return 1
	case TierDaily:
		return HoursPerDay
	case TierWeekly:
		return HoursPerWeek
	case TierMonthly:
		return HoursPerMonth
	default:
		return HoursPerDay
	}
}

func (t RateTier) rank() int {
	switch t {
	case TierHourly:
		return 0
	case TierDaily:
		return 1
	case TierWeekly:
		return 2
	case TierMonthly:
		return 3
	default:
		return 1
	}
}

// AtLeast reports whether t is of equal or coarser granularity than other.
func (t RateTier) AtLeast(other RateTier) bool {
	return t.rank() >= other.rank()
}

// SeasonRule maps a named season window to a pricing multiplier. Windows are
// month/day spans and may wrap the year end (e.g. Dec 15 - Jan 10).
type SeasonRule struct {
	Name       string          `json:"name"`
	StartMonth time.Month      `json:"start_month"`
	StartDay   int             `json:"start_day"`
	EndMonth   time.Month      `json:"end_month"`
	EndDay     int             `json:"end_day"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

// Contains reports whether t falls inside the season window, inclusive on
// both ends. The year component of t is ignored.
func (r SeasonRule) Contains(t time.Time) bool {
	point := int(t.Month())*100 + t.Day()
	start := int(r.StartMonth)*100 + r.StartDay
	end := int(r.EndMonth)*100 + r.EndDay
	if start <= end {
		return point >= start && point <= end
	}
	// window wraps the year end
	return point >= start || point <= end
}

// PriceSchedule is the priced-rate record for one product/country/currency
// combination, valid over an effective window. It is supplied to the engine
// per call and read-only to it; resolving which schedule is active now is the
// repository's responsibility.
type PriceSchedule struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	CountryID string    `json:"country_id"`
	Currency  string    `json:"currency"`

	// Tiered rates. Daily is mandatory; the rest are optional.
	HourlyRate      *decimal.Decimal `json:"hourly_rate,omitempty"`
	DailyRate       decimal.Decimal  `json:"daily_rate"`
	WeeklyRate      *decimal.Decimal `json:"weekly_rate,omitempty"`
	MonthlyRate     *decimal.Decimal `json:"monthly_rate,omitempty"`
	SecurityDeposit decimal.Decimal  `json:"security_deposit"`

	// Market and seasonal adjustment parameters.
	MarketAdjustmentFactor decimal.Decimal `json:"market_adjustment_factor"`
	DynamicPricingEnabled  bool            `json:"dynamic_pricing_enabled"`
	PeakSeasonMultiplier   decimal.Decimal `json:"peak_season_multiplier"`
	OffSeasonMultiplier    decimal.Decimal `json:"off_season_multiplier"`
	Seasons                []SeasonRule    `json:"seasons,omitempty"`

	// Rental rules.
	MinRentalDurationHours int             `json:"min_rental_duration_hours"`
	MaxRentalDurationDays  *int            `json:"max_rental_duration_days,omitempty"`
	EarlyReturnFeePct      decimal.Decimal `json:"early_return_fee_pct"`
	LateReturnFeePerHour   decimal.Decimal `json:"late_return_fee_per_hour"`

	// Discount parameters. Percentages are fractions (0.05 = 5%).
	WeeklyDiscountPct     decimal.Decimal `json:"weekly_discount_pct"`
	MonthlyDiscountPct    decimal.Decimal `json:"monthly_discount_pct"`
	BulkDiscountThreshold int             `json:"bulk_discount_threshold"`
	BulkDiscountPct       decimal.Decimal `json:"bulk_discount_pct"`

	// Validity window.
	EffectiveFrom  time.Time  `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until,omitempty"`
	Active         bool       `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize applies the documented defaults to unset fields. It is called at
// construction and load time so calculation code never defaults anything.
func (s *PriceSchedule) Normalize() {
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	s.CountryID = strings.ToUpper(strings.TrimSpace(s.CountryID))
	if s.MarketAdjustmentFactor.IsZero() {
		s.MarketAdjustmentFactor = decimal.NewFromInt(1)
	}
	if s.PeakSeasonMultiplier.IsZero() {
		s.PeakSeasonMultiplier = decimal.NewFromInt(1)
	}
	if s.OffSeasonMultiplier.IsZero() {
		s.OffSeasonMultiplier = decimal.NewFromInt(1)
	}
	if s.MinRentalDurationHours <= 0 {
		s.MinRentalDurationHours = 1
	}
}

// Validate checks the schedule is well-formed for storage. The engine applies
// its own calculation-time checks; this guards the upsert path.
func (s *PriceSchedule) Validate() error {
	if s.ProductID == uuid.Nil {
		return NewValidationError("product id is required", "")
	}
	if s.CountryID == "" {
		return NewValidationError("country id is required", "")
	}
	if len(s.Currency) != 3 {
		return NewValidationError("currency must be a 3-letter code", s.Currency)
	}
	if !s.DailyRate.IsPositive() {
		return NewConfigurationError("daily rate must be positive", s.DailyRate.String())
	}
	for _, rate := range []*decimal.Decimal{s.HourlyRate, s.WeeklyRate, s.MonthlyRate} {
		if rate != nil && rate.IsNegative() {
			return NewConfigurationError("tier rates must not be negative", rate.String())
		}
	}
	if s.SecurityDeposit.IsNegative() {
		return NewConfigurationError("security deposit must not be negative", s.SecurityDeposit.String())
	}
	one := decimal.NewFromInt(1)
	for name, pct := range map[string]decimal.Decimal{
		"weekly_discount_pct":  s.WeeklyDiscountPct,
		"monthly_discount_pct": s.MonthlyDiscountPct,
		"bulk_discount_pct":    s.BulkDiscountPct,
	} {
		if pct.IsNegative() || pct.GreaterThanOrEqual(one) {
			return NewConfigurationError(
				fmt.Sprintf("%s must be in [0, 1)", name), pct.String())
		}
	}
	if s.BulkDiscountThreshold < 0 {
		return NewConfigurationError("bulk discount threshold must not be negative",
			fmt.Sprintf("%d", s.BulkDiscountThreshold))
	}
	if s.MaxRentalDurationDays != nil && *s.MaxRentalDurationDays <= 0 {
		return NewConfigurationError("max rental duration must be positive",
			fmt.Sprintf("%d", *s.MaxRentalDurationDays))
	}
	if s.EffectiveUntil != nil && !s.EffectiveUntil.After(s.EffectiveFrom) {
		return NewValidationError("effective window is empty",
			fmt.Sprintf("from %s until %s", s.EffectiveFrom.Format(time.RFC3339), s.EffectiveUntil.Format(time.RFC3339)))
	}
	return nil
}

// EffectiveAt reports whether the schedule is active and inside its
// effective window at the given instant.
func (s *PriceSchedule) EffectiveAt(at time.Time) bool {
	if !s.Active {
		return false
	}
	if at.Before(s.EffectiveFrom) {
		return false
	}
	if s.EffectiveUntil != nil && !at.Before(*s.EffectiveUntil) {
		return false
	}
	return true
}
