package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// ComputeDiscounts evaluates the weekly, monthly and bulk discount rules in
// that fixed order. Each discount is computed against the adjusted amount, not
// a running balance, so the lines never compound. A combined percentage at or
// past 100% is a configuration error, never clamped.
func ComputeDiscounts(adjusted decimal.Decimal, schedule *domain.PriceSchedule, tier domain.RateTier, quantity int, apply bool) ([]domain.DiscountLine, decimal.Decimal, error) {
	if !apply {
		return nil, decimal.Zero, nil
	}

	var applicable []domain.DiscountLine
	combined := decimal.Zero

	if tier.AtLeast(domain.TierWeekly) && schedule.WeeklyDiscountPct.IsPositive() {
		applicable = append(applicable, domain.DiscountLine{
			Name:   domain.DiscountWeekly,
			Amount: adjusted.Mul(schedule.WeeklyDiscountPct),
		})
		combined = combined.Add(schedule.WeeklyDiscountPct)
	}
	if tier == domain.TierMonthly && schedule.MonthlyDiscountPct.IsPositive() {
		applicable = append(applicable, domain.DiscountLine{
			Name:   domain.DiscountMonthly,
			Amount: adjusted.Mul(schedule.MonthlyDiscountPct),
		})
		combined = combined.Add(schedule.MonthlyDiscountPct)
	}
	if schedule.BulkDiscountThreshold > 0 && quantity >= schedule.BulkDiscountThreshold && schedule.BulkDiscountPct.IsPositive() {
		applicable = append(applicable, domain.DiscountLine{
			Name:   domain.DiscountBulk,
			Amount: adjusted.Mul(schedule.BulkDiscountPct),
		})
		combined = combined.Add(schedule.BulkDiscountPct)
	}

	if combined.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, decimal.Zero, domain.NewConfigurationError(
			"combined discount percentage reaches 100%",
			fmt.Sprintf("combined %s on schedule %s", combined.String(), schedule.ID))
	}

	total := decimal.Zero
	for _, line := range applicable {
		total = total.Add(line.Amount)
	}
	return applicable, total, nil
}
