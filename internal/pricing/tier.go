package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// TierSelection is the outcome of rate tier selection.
type TierSelection struct {
	Tier  domain.RateTier
	Rate  decimal.Decimal
	Count int
}

// SelectTier chooses the coarsest tier the duration qualifies for: monthly
// at 720h+, weekly at 168h+, then hourly when priced, with daily as the
// universal fallback.
func SelectTier(schedule *domain.PriceSchedule, durationHours int) (TierSelection, error) {
	if durationHours < schedule.MinRentalDurationHours {
		return TierSelection{}, domain.NewValidationError(
			"rental duration below minimum",
			fmt.Sprintf("requested %d hours, minimum %d hours", durationHours, schedule.MinRentalDurationHours))
	}
	if schedule.MaxRentalDurationDays != nil {
		maxHours := *schedule.MaxRentalDurationDays * domain.HoursPerDay
		if durationHours > maxHours {
			return TierSelection{}, domain.NewRangeError(
				"rental duration exceeds maximum",
				fmt.Sprintf("requested %d hours, maximum %d hours", durationHours, maxHours))
		}
	}

	switch {
	case durationHours >= domain.HoursPerMonth && positive(schedule.MonthlyRate):
		return TierSelection{
			Tier:  domain.TierMonthly,
			Rate:  *schedule.MonthlyRate,
			Count: ceilDiv(durationHours, domain.HoursPerMonth),
		}, nil
	case durationHours >= domain.HoursPerWeek && positive(schedule.WeeklyRate):
		return TierSelection{
			Tier:  domain.TierWeekly,
			Rate:  *schedule.WeeklyRate,
			Count: ceilDiv(durationHours, domain.HoursPerWeek),
		}, nil
	case positive(schedule.HourlyRate):
		return TierSelection{
			Tier:  domain.TierHourly,
			Rate:  *schedule.HourlyRate,
			Count: durationHours,
		}, nil
	default:
		if !schedule.DailyRate.IsPositive() {
			return TierSelection{}, domain.NewConfigurationError(
				"daily rate is required on every schedule", schedule.ID.String())
		}
		return TierSelection{
			Tier:  domain.TierDaily,
			Rate:  schedule.DailyRate,
			Count: ceilDiv(durationHours, domain.HoursPerDay),
		}, nil
	}
}

func positive(rate *decimal.Decimal) bool {
	return rate != nil && rate.IsPositive()
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}
