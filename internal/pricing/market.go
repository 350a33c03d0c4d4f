package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// MarketAdjustment is the outcome of applying the per-country factor and, when
// dynamic pricing is enabled, exactly one seasonal multiplier source.
type MarketAdjustment struct {
	Amount             decimal.Decimal
	Factor             decimal.Decimal
	SeasonalMultiplier decimal.Decimal
}

// AdjustForMarket multiplies the base amount by the schedule's market
// adjustment factor and resolves a seasonal multiplier when dynamic pricing is
// enabled: the first matching season window wins, then the caller-supplied
// peak flag, then the off-season default. The sources are never combined.
func AdjustForMarket(base decimal.Decimal, schedule *domain.PriceSchedule, rentalStart *time.Time, peak bool) MarketAdjustment {
	adj := MarketAdjustment{
		Factor:             schedule.MarketAdjustmentFactor,
		SeasonalMultiplier: decimal.NewFromInt(1),
	}

	if schedule.DynamicPricingEnabled {
		adj.SeasonalMultiplier = resolveSeasonalMultiplier(schedule, rentalStart, peak)
	}

	adj.Amount = base.Mul(adj.Factor).Mul(adj.SeasonalMultiplier)
	return adj
}

func resolveSeasonalMultiplier(schedule *domain.PriceSchedule, rentalStart *time.Time, peak bool) decimal.Decimal {
	if rentalStart != nil {
		for _, rule := range schedule.Seasons {
			if rule.Contains(*rentalStart) {
				return rule.Multiplier
			}
		}
	}
	if peak {
		return schedule.PeakSeasonMultiplier
	}
	return schedule.OffSeasonMultiplier
}
