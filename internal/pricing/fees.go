package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// Fees are the non-discountable line items of a quote. The deposit is carried
// verbatim; early and late return fees are exposed as rates only, since
// actual return timing is unknown at quote time and settlement applies them
// later against elapsed time.
type Fees struct {
	SecurityDeposit      decimal.Decimal
	EarlyReturnFeePct    decimal.Decimal
	LateReturnFeePerHour decimal.Decimal
}

// CalculateFees returns the fee line items for a schedule. Deposits are never
// discounted.
func CalculateFees(schedule *domain.PriceSchedule, includeDeposit bool) Fees {
	fees := Fees{
		SecurityDeposit:      decimal.Zero,
		EarlyReturnFeePct:    schedule.EarlyReturnFeePct,
		LateReturnFeePerHour: schedule.LateReturnFeePerHour,
	}
	if includeDeposit {
		fees.SecurityDeposit = schedule.SecurityDeposit
	}
	return fees
}
