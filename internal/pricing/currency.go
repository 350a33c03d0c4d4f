package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// ConvertCurrency converts an amount between currencies using an externally
// resolved rate. Identity conversions return the amount unchanged with rate
// 1.0. Converted values are rounded half-to-even to 2 decimal places exactly
// once here, never on intermediate sub-totals.
func ConvertCurrency(amount decimal.Decimal, from, to string, rate decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if strings.EqualFold(from, to) {
		return amount, decimal.NewFromInt(1), nil
	}
	if !rate.IsPositive() {
		return decimal.Zero, decimal.Zero, domain.NewCurrencyConversionError(
			"exchange rate must be positive",
			fmt.Sprintf("%s -> %s, rate %s", from, to, rate.String()))
	}
	return amount.Mul(rate).RoundBank(2), rate, nil
}
