package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// TestEngine_WeeklyQuoteWithStackedDiscounts exercises the documented RWF
// example end to end: two units for one week with a 10% market uplift, a 5%
// weekly discount and a 2% bulk discount.
func TestEngine_WeeklyQuoteWithStackedDiscounts(t *testing.T) {
	s := newTestSchedule()
	s.MarketAdjustmentFactor = decimal.NewFromFloat(1.1)
	s.WeeklyDiscountPct = decimal.NewFromFloat(0.05)
	s.BulkDiscountThreshold = 2
	s.BulkDiscountPct = decimal.NewFromFloat(0.02)

	req := domain.CalculationRequest{
		ProductID:              s.ProductID,
		CountryID:              "RW",
		DurationHours:          168,
		Quantity:               2,
		IncludeSecurityDeposit: true,
		ApplyDiscounts:         true,
	}

	result, err := NewEngine().Calculate(s, req, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.BaseRateType != domain.TierWeekly {
		t.Fatalf("expected weekly tier, got %s", result.BaseRateType)
	}
	if !result.BaseAmount.Equal(decimal.NewFromInt(600000)) {
		t.Fatalf("expected base 600000, got %s", result.BaseAmount)
	}
	if !result.AdjustedAmount.Equal(decimal.NewFromInt(660000)) {
		t.Fatalf("expected adjusted 660000, got %s", result.AdjustedAmount)
	}
	if !result.WeeklyDiscount.Equal(decimal.NewFromInt(33000)) {
		t.Fatalf("expected weekly discount 33000, got %s", result.WeeklyDiscount)
	}
	if !result.BulkDiscount.Equal(decimal.NewFromInt(13200)) {
		t.Fatalf("expected bulk discount 13200, got %s", result.BulkDiscount)
	}
	if !result.TotalDiscount.Equal(decimal.NewFromInt(46200)) {
		t.Fatalf("expected total discount 46200, got %s", result.TotalDiscount)
	}
	if !result.Subtotal.Equal(decimal.NewFromInt(613800)) {
		t.Fatalf("expected subtotal 613800, got %s", result.Subtotal)
	}
	if !result.SecurityDeposit.Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("expected deposit 20000, got %s", result.SecurityDeposit)
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(633800)) {
		t.Fatalf("expected total 633800, got %s", result.TotalAmount)
	}
	if !result.ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected exchange rate 1.0, got %s", result.ExchangeRate)
	}
	if len(result.DiscountsApplied) != 2 ||
		result.DiscountsApplied[0] != domain.DiscountWeekly ||
		result.DiscountsApplied[1] != domain.DiscountBulk {
		t.Fatalf("expected [weekly bulk], got %v", result.DiscountsApplied)
	}
	if result.RentalDurationDays != 7 {
		t.Fatalf("expected 7 days, got %d", result.RentalDurationDays)
	}
}

func TestEngine_Idempotence(t *testing.T) {
	s := newTestSchedule()
	s.WeeklyDiscountPct = decimal.NewFromFloat(0.05)
	req := domain.CalculationRequest{
		ProductID:      s.ProductID,
		CountryID:      "RW",
		DurationHours:  168,
		ApplyDiscounts: true,
	}

	engine := NewEngine()
	first, err := engine.Calculate(s, req, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Calculate(s, req, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.TotalAmount.Equal(second.TotalAmount) || first.BaseRateType != second.BaseRateType {
		t.Fatalf("identical inputs must yield identical results: %s vs %s", first.TotalAmount, second.TotalAmount)
	}
}

func TestEngine_NoDiscountBaseline(t *testing.T) {
	s := newTestSchedule()
	s.WeeklyDiscountPct = decimal.NewFromFloat(0.05)
	req := domain.CalculationRequest{
		ProductID:     s.ProductID,
		DurationHours: 168,
	}

	result, err := NewEngine().Calculate(s, req, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.TotalDiscount.IsZero() {
		t.Fatalf("expected zero discount, got %s", result.TotalDiscount)
	}
	if len(result.DiscountsApplied) != 0 {
		t.Fatalf("expected empty audit list, got %v", result.DiscountsApplied)
	}
}

func TestEngine_DepositNeverDiscounted(t *testing.T) {
	s := newTestSchedule()
	s.WeeklyDiscountPct = decimal.NewFromFloat(0.10)
	base := domain.CalculationRequest{
		ProductID:              s.ProductID,
		DurationHours:          168,
		IncludeSecurityDeposit: true,
	}

	withDiscounts := base
	withDiscounts.ApplyDiscounts = true

	engine := NewEngine()
	a, err := engine.Calculate(s, base, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := engine.Calculate(s, withDiscounts, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.SecurityDeposit.Equal(b.SecurityDeposit) {
		t.Fatalf("deposit must not depend on discounts: %s vs %s", a.SecurityDeposit, b.SecurityDeposit)
	}
}

func TestEngine_CurrencyConversion(t *testing.T) {
	s := newTestSchedule()
	req := domain.CalculationRequest{
		ProductID:              s.ProductID,
		Currency:               "USD",
		DurationHours:          24,
		IncludeSecurityDeposit: true,
	}

	// 50000 RWF/day and 20000 deposit at 0.00075 -> 37.50 + 15.00
	result, err := NewEngine().Calculate(s, req, decimal.RequireFromString("0.00075"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Subtotal.Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("expected subtotal 37.5, got %s", result.Subtotal)
	}
	if !result.SecurityDeposit.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected deposit 15, got %s", result.SecurityDeposit)
	}
	if !result.TotalAmount.Equal(decimal.RequireFromString("52.5")) {
		t.Fatalf("expected total 52.5, got %s", result.TotalAmount)
	}
	if !result.ExchangeRate.Equal(decimal.RequireFromString("0.00075")) {
		t.Fatalf("expected rate echoed, got %s", result.ExchangeRate)
	}
}

func TestEngine_MissingRateForConversion(t *testing.T) {
	s := newTestSchedule()
	req := domain.CalculationRequest{
		ProductID:     s.ProductID,
		Currency:      "USD",
		DurationHours: 24,
	}

	_, err := NewEngine().Calculate(s, req, decimal.Zero)
	if !domain.IsCode(err, domain.ErrCodeCurrencyConversion) {
		t.Fatalf("expected CURRENCY_CONVERSION_ERROR, got %v", err)
	}
}

func TestEngine_NilSchedule(t *testing.T) {
	req := domain.CalculationRequest{DurationHours: 24}

	_, err := NewEngine().Calculate(nil, req, decimal.Zero)
	if !domain.IsCode(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestEngine_InvalidQuantity(t *testing.T) {
	s := newTestSchedule()
	req := domain.CalculationRequest{
		ProductID:     s.ProductID,
		DurationHours: 24,
		Quantity:      -1,
	}

	_, err := NewEngine().Calculate(s, req, decimal.Zero)
	if !domain.IsCode(err, domain.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestEngine_QuantityDefaultsToOne(t *testing.T) {
	s := newTestSchedule()
	req := domain.CalculationRequest{
		ProductID:     s.ProductID,
		DurationHours: 24,
	}

	result, err := NewEngine().Calculate(s, req, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Quantity != 1 {
		t.Fatalf("expected quantity defaulted to 1, got %d", result.Quantity)
	}
	if !result.BaseAmount.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected 50000, got %s", result.BaseAmount)
	}
}
