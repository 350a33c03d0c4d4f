package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// Engine sequences tier selection, market adjustment, discount calculation,
// currency conversion and fee assembly into one calculation. It holds no
// state and performs no I/O: every call is a deterministic function of the
// supplied schedule and request, safe for concurrent use.
type Engine struct{}

// NewEngine creates a pricing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Calculate computes the full price breakdown for a request against one
// resolved schedule. The exchange rate is only consulted when the requested
// currency differs from the schedule's base currency. The first stage failure
// aborts the calculation; there is no partial result.
func (e *Engine) Calculate(schedule *domain.PriceSchedule, req domain.CalculationRequest, exchangeRate decimal.Decimal) (*domain.CalculationResult, error) {
	if schedule == nil {
		return nil, domain.NewNotFoundError("price schedule", req.ProductID.String())
	}

	req.Normalize(schedule)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	selection, err := SelectTier(schedule, req.DurationHours)
	if err != nil {
		return nil, err
	}

	baseAmount := selection.Rate.
		Mul(decimal.NewFromInt(int64(selection.Count))).
		Mul(decimal.NewFromInt(int64(req.Quantity)))

	adjustment := AdjustForMarket(baseAmount, schedule, req.RentalStart, req.PeakDate)

	discounts, totalDiscount, err := ComputeDiscounts(
		adjustment.Amount, schedule, selection.Tier, req.Quantity, req.ApplyDiscounts)
	if err != nil {
		return nil, err
	}

	subtotal := adjustment.Amount.Sub(totalDiscount)
	fees := CalculateFees(schedule, req.IncludeSecurityDeposit)

	convertedSubtotal, rateUsed, err := ConvertCurrency(subtotal, schedule.Currency, req.Currency, exchangeRate)
	if err != nil {
		return nil, err
	}
	convertedDeposit, _, err := ConvertCurrency(fees.SecurityDeposit, schedule.Currency, req.Currency, exchangeRate)
	if err != nil {
		return nil, err
	}

	result := &domain.CalculationResult{
		ProductID:           req.ProductID,
		CountryID:           req.CountryID,
		Currency:            req.Currency,
		RentalDurationHours: req.DurationHours,
		RentalDurationDays:  ceilDiv(req.DurationHours, domain.HoursPerDay),
		Quantity:            req.Quantity,

		BaseRateType: selection.Tier,
		BaseRate:     selection.Rate,
		BaseAmount:   baseAmount,

		MarketAdjustmentFactor: adjustment.Factor,
		SeasonalMultiplier:     adjustment.SeasonalMultiplier,
		AdjustedAmount:         adjustment.Amount,

		WeeklyDiscount:  decimal.Zero,
		MonthlyDiscount: decimal.Zero,
		BulkDiscount:    decimal.Zero,
		TotalDiscount:   totalDiscount,

		Subtotal:        convertedSubtotal,
		SecurityDeposit: convertedDeposit,
		TotalAmount:     convertedSubtotal.Add(convertedDeposit),
		ExchangeRate:    rateUsed,

		EarlyReturnFeePct:    fees.EarlyReturnFeePct,
		LateReturnFeePerHour: fees.LateReturnFeePerHour,

		DiscountsApplied: make([]string, 0, len(discounts)),
	}

	for _, line := range discounts {
		result.DiscountsApplied = append(result.DiscountsApplied, line.Name)
		switch line.Name {
		case domain.DiscountWeekly:
			result.WeeklyDiscount = line.Amount
		case domain.DiscountMonthly:
			result.MonthlyDiscount = line.Amount
		case domain.DiscountBulk:
			result.BulkDiscount = line.Amount
		}
	}

	return result, nil
}
