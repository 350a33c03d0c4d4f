package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kora-rentals/pricingservice/internal/fx"
	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
	"github.com/kora-rentals/pricingservice/internal/pricing/repo"
)

func seedQuoteFixture(t *testing.T) (*repo.MemoryStore, *domain.PriceSchedule) {
	t.Helper()
	store := repo.NewMemoryStore()
	weekly := decimal.NewFromInt(300000)
	schedule := &domain.PriceSchedule{
		ProductID:              uuid.New(),
		CountryID:              "RW",
		Currency:               "RWF",
		DailyRate:              decimal.NewFromInt(50000),
		WeeklyRate:             &weekly,
		SecurityDeposit:        decimal.NewFromInt(20000),
		MarketAdjustmentFactor: decimal.NewFromFloat(1.1),
		WeeklyDiscountPct:      decimal.NewFromFloat(0.05),
		BulkDiscountThreshold:  2,
		BulkDiscountPct:        decimal.NewFromFloat(0.02),
		EffectiveFrom:          time.Now().Add(-time.Hour),
		Active:                 true,
	}
	saved, err := store.Upsert(context.Background(), schedule)
	require.NoError(t, err)
	return store, saved
}

func TestQuoteUseCase_WeeklyQuote(t *testing.T) {
	store, schedule := seedQuoteFixture(t)
	uc := NewQuoteUseCase(store, fx.NewStaticResolver(nil), nil, time.Minute, nil)

	result, err := uc.Quote(context.Background(), domain.CalculationRequest{
		ProductID:              schedule.ProductID,
		CountryID:              "RW",
		Currency:               "RWF",
		DurationHours:          168,
		Quantity:               2,
		IncludeSecurityDeposit: true,
		ApplyDiscounts:         true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TierWeekly, result.BaseRateType)
	assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(633800)),
		"expected 633800, got %s", result.TotalAmount)
	assert.Equal(t, []string{domain.DiscountWeekly, domain.DiscountBulk}, result.DiscountsApplied)
	assert.True(t, result.ExchangeRate.Equal(decimal.NewFromInt(1)))
}

func TestQuoteUseCase_CurrencyDefaultsToSchedule(t *testing.T) {
	store, schedule := seedQuoteFixture(t)
	uc := NewQuoteUseCase(store, fx.NewStaticResolver(nil), nil, time.Minute, nil)

	result, err := uc.Quote(context.Background(), domain.CalculationRequest{
		ProductID:     schedule.ProductID,
		CountryID:     "RW",
		DurationHours: 24,
	})
	require.NoError(t, err)

	assert.Equal(t, "RWF", result.Currency)
	assert.Equal(t, 1, result.Quantity)
}

func TestQuoteUseCase_ConvertsToDisplayCurrency(t *testing.T) {
	store, schedule := seedQuoteFixture(t)
	resolver := fx.NewStaticResolver(map[string]float64{"RWF/USD": 0.0008})
	uc := NewQuoteUseCase(store, resolver, nil, time.Minute, nil)

	result, err := uc.Quote(context.Background(), domain.CalculationRequest{
		ProductID:     schedule.ProductID,
		CountryID:     "RW",
		Currency:      "USD",
		DurationHours: 24,
	})
	require.NoError(t, err)

	// 50000 * 1.1 = 55000 RWF -> 44.00 USD
	assert.Equal(t, "USD", result.Currency)
	assert.True(t, result.Subtotal.Equal(decimal.NewFromInt(44)),
		"expected 44, got %s", result.Subtotal)
	assert.True(t, result.ExchangeRate.Equal(decimal.NewFromFloat(0.0008)))
}

func TestQuoteUseCase_CurrencyOmittedInCrowdedCountry(t *testing.T) {
	store, schedule := seedQuoteFixture(t)
	for i := 0; i < 400; i++ {
		weekly := decimal.NewFromInt(300000)
		_, err := store.Upsert(context.Background(), &domain.PriceSchedule{
			ProductID:     uuid.New(),
			CountryID:     "RW",
			Currency:      "RWF",
			DailyRate:     decimal.NewFromInt(50000),
			WeeklyRate:    &weekly,
			EffectiveFrom: time.Now().Add(-time.Hour),
			Active:        true,
		})
		require.NoError(t, err)
	}
	uc := NewQuoteUseCase(store, fx.NewStaticResolver(nil), nil, time.Minute, nil)

	for i := 0; i < 30; i++ {
		result, err := uc.Quote(context.Background(), domain.CalculationRequest{
			ProductID:     schedule.ProductID,
			CountryID:     "RW",
			DurationHours: 24,
		})
		require.NoError(t, err, "quote %d for a product with an active schedule", i)
		assert.Equal(t, "RWF", result.Currency)
	}
}

func TestQuoteUseCase_CurrencyOmittedPicksDeterministicSchedule(t *testing.T) {
	store := repo.NewMemoryStore()
	productID := uuid.New()
	for _, currency := range []string{"USD", "RWF"} {
		_, err := store.Upsert(context.Background(), &domain.PriceSchedule{
			ProductID:     productID,
			CountryID:     "RW",
			Currency:      currency,
			DailyRate:     decimal.NewFromInt(100),
			EffectiveFrom: time.Now().Add(-time.Hour),
			Active:        true,
		})
		require.NoError(t, err)
	}
	uc := NewQuoteUseCase(store, fx.NewStaticResolver(nil), nil, time.Minute, nil)

	for i := 0; i < 20; i++ {
		result, err := uc.Quote(context.Background(), domain.CalculationRequest{
			ProductID:     productID,
			CountryID:     "RW",
			DurationHours: 24,
		})
		require.NoError(t, err)
		assert.Equal(t, "RWF", result.Currency, "resolution must not depend on map order")
	}
}

func TestQuoteUseCase_NoScheduleFound(t *testing.T) {
	store := repo.NewMemoryStore()
	uc := NewQuoteUseCase(store, fx.NewStaticResolver(nil), nil, time.Minute, nil)

	_, err := uc.Quote(context.Background(), domain.CalculationRequest{
		ProductID:     uuid.New(),
		CountryID:     "RW",
		DurationHours: 24,
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotFound), "got %v", err)
}

func TestQuoteUseCase_RateUnavailable(t *testing.T) {
	store, schedule := seedQuoteFixture(t)
	uc := NewQuoteUseCase(store, fx.NewStaticResolver(nil), nil, time.Minute, nil)

	_, err := uc.Quote(context.Background(), domain.CalculationRequest{
		ProductID:     schedule.ProductID,
		CountryID:     "RW",
		Currency:      "USD",
		DurationHours: 24,
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeCurrencyConversion), "got %v", err)
}

func TestAdjustmentUseCase_BulkAdjustmentVisibleToNextQuote(t *testing.T) {
	store, schedule := seedQuoteFixture(t)
	quotes := NewQuoteUseCase(store, fx.NewStaticResolver(nil), nil, time.Minute, nil)
	admin := NewAdjustmentUseCase(store, nil, nil)

	touched, err := admin.ApplyBulkAdjustment(context.Background(), domain.BulkAdjustment{
		CountryID:     "RW",
		RateChangePct: decimal.NewFromFloat(0.10),
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, touched)

	result, err := quotes.Quote(context.Background(), domain.CalculationRequest{
		ProductID:     schedule.ProductID,
		CountryID:     "RW",
		DurationHours: 24,
	})
	require.NoError(t, err)

	// 50000 * 1.10 rate change = 55000, then the 1.1 market factor
	assert.True(t, result.BaseAmount.Equal(decimal.NewFromInt(55000)),
		"expected base 55000, got %s", result.BaseAmount)
}

func TestAdjustmentUseCase_UpsertValidates(t *testing.T) {
	store := repo.NewMemoryStore()
	admin := NewAdjustmentUseCase(store, nil, nil)

	_, err := admin.UpsertSchedule(context.Background(), &domain.PriceSchedule{
		ProductID: uuid.New(),
		CountryID: "RW",
		Currency:  "RWF",
		// missing daily rate
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeConfiguration), "got %v", err)
}
