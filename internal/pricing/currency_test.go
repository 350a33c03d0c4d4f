package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

func TestConvertCurrency_Identity(t *testing.T) {
	amount := decimal.RequireFromString("613800.123")

	converted, rate, err := ConvertCurrency(amount, "RWF", "RWF", decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !converted.Equal(amount) {
		t.Fatalf("identity conversion must not touch the amount, got %s", converted)
	}
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected rate 1.0, got %s", rate)
	}
}

func TestConvertCurrency_AppliesRateAndRoundsHalfToEven(t *testing.T) {
	// 100.125 rounds down to 100.12, 100.135 rounds up to 100.14
	converted, rate, err := ConvertCurrency(decimal.RequireFromString("1001.25"), "RWF", "USD", decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !converted.Equal(decimal.RequireFromString("100.12")) {
		t.Fatalf("expected 100.12, got %s", converted)
	}
	if !rate.Equal(decimal.RequireFromString("0.1")) {
		t.Fatalf("expected rate 0.1, got %s", rate)
	}

	converted, _, err = ConvertCurrency(decimal.RequireFromString("1001.35"), "RWF", "USD", decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !converted.Equal(decimal.RequireFromString("100.14")) {
		t.Fatalf("expected 100.14, got %s", converted)
	}
}

func TestConvertCurrency_RejectsNonPositiveRate(t *testing.T) {
	for _, rate := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-2)} {
		_, _, err := ConvertCurrency(decimal.NewFromInt(100), "RWF", "USD", rate)
		if !domain.IsCode(err, domain.ErrCodeCurrencyConversion) {
			t.Fatalf("expected CURRENCY_CONVERSION_ERROR for rate %s, got %v", rate, err)
		}
	}
}
