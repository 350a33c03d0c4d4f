package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kora-rentals/pricingservice/internal/cache"
	"github.com/kora-rentals/pricingservice/internal/events"
	"github.com/kora-rentals/pricingservice/internal/fx"
	"github.com/kora-rentals/pricingservice/internal/log"
	"github.com/kora-rentals/pricingservice/internal/metrics"
	"github.com/kora-rentals/pricingservice/internal/pricing"
	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
	"github.com/kora-rentals/pricingservice/internal/pricing/repo"
	"github.com/kora-rentals/pricingservice/internal/tracing"
)

// QuoteUseCase resolves the collaborators a price calculation needs, the
// active schedule and, when converting, an exchange rate, then runs the
// engine. All I/O happens here, before the engine is invoked.
type QuoteUseCase struct {
	schedules   repo.ScheduleRepository
	rates       fx.Resolver
	engine      *pricing.Engine
	cache       *cache.Cache
	scheduleTTL time.Duration
	publisher   events.Publisher
}

// NewQuoteUseCase creates a quote use case. Cache may be nil, in which case
// every call hits the repository directly.
func NewQuoteUseCase(schedules repo.ScheduleRepository, rates fx.Resolver, c *cache.Cache, scheduleTTL time.Duration, publisher events.Publisher) *QuoteUseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &QuoteUseCase{
		schedules:   schedules,
		rates:       rates,
		engine:      pricing.NewEngine(),
		cache:       c,
		scheduleTTL: scheduleTTL,
		publisher:   publisher,
	}
}

// Quote computes a full price breakdown for the request
func (uc *QuoteUseCase) Quote(ctx context.Context, req domain.CalculationRequest) (*domain.CalculationResult, error) {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, "pricing.quote")
	defer span.End()
	tracing.SetSpanAttributes(ctx,
		attribute.String("product_id", req.ProductID.String()),
		attribute.String("country_id", req.CountryID),
		attribute.Int("duration_hours", req.DurationHours))

	ctx = log.WithProductID(ctx, req.ProductID.String())
	ctx = log.WithCountry(ctx, req.CountryID)

	req.Normalize(nil)

	schedule, err := uc.resolveSchedule(ctx, req)
	if err != nil {
		tracing.RecordError(ctx, err)
		metrics.ObserveQuoteError(domain.CodeOf(err), time.Since(started))
		return nil, err
	}

	rate, err := uc.resolveRate(ctx, schedule, req)
	if err != nil {
		tracing.RecordError(ctx, err)
		metrics.ObserveQuoteError(domain.CodeOf(err), time.Since(started))
		return nil, err
	}

	result, err := uc.engine.Calculate(schedule, req, rate)
	if err != nil {
		log.Warn(ctx, "Price calculation failed",
			zap.String("code", domain.CodeOf(err)),
			zap.Error(err))
		tracing.RecordError(ctx, err)
		metrics.ObserveQuoteError(domain.CodeOf(err), time.Since(started))
		return nil, err
	}

	elapsed := time.Since(started)
	tracing.SetSpanAttributes(ctx,
		attribute.String("tier", string(result.BaseRateType)),
		attribute.String("currency", result.Currency))
	metrics.ObserveQuote(string(result.BaseRateType), result.Currency, "ok", elapsed)
	discountValue, _ := result.TotalDiscount.Float64()
	metrics.DiscountAmount.WithLabelValues(result.Currency).Observe(discountValue)

	uc.publishQuoteComputed(ctx, result)

	log.Info(ctx, "Price quote computed",
		zap.String("tier", string(result.BaseRateType)),
		zap.String("currency", result.Currency),
		zap.String("total_amount", result.TotalAmount.String()),
		zap.Strings("discounts_applied", result.DiscountsApplied),
		zap.Duration("elapsed", elapsed))

	return result, nil
}

func (uc *QuoteUseCase) resolveSchedule(ctx context.Context, req domain.CalculationRequest) (*domain.PriceSchedule, error) {
	now := time.Now()
	currency := strings.ToUpper(req.Currency)

	if currency != "" {
		key := cache.ScheduleKey(req.ProductID.String(), req.CountryID, currency)
		if uc.cache != nil {
			var cached domain.PriceSchedule
			err := uc.cache.Get(ctx, key, &cached)
			switch {
			case err == nil && cached.EffectiveAt(now):
				metrics.ScheduleCacheHits.WithLabelValues("hit").Inc()
				return &cached, nil
			case err == nil || errors.Is(err, cache.ErrMiss):
				metrics.ScheduleCacheHits.WithLabelValues("miss").Inc()
			default:
				metrics.ScheduleCacheHits.WithLabelValues("error").Inc()
			}
		}

		schedule, err := uc.schedules.ResolveActive(ctx, req.ProductID, req.CountryID, currency, now)
		if err == nil {
			uc.cacheSchedule(ctx, schedule)
			return schedule, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			log.Error(ctx, "Failed to resolve schedule", zap.Error(err))
			return nil, err
		}
		// no schedule priced in the display currency; fall back to the
		// base-currency schedule and convert at quote time
	}

	schedule, err := uc.schedules.ResolveActiveAnyCurrency(ctx, req.ProductID, req.CountryID, now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, domain.NewNotFoundError("price schedule", req.ProductID.String())
		}
		log.Error(ctx, "Failed to resolve schedule", zap.Error(err))
		return nil, err
	}
	uc.cacheSchedule(ctx, schedule)
	return schedule, nil
}

func (uc *QuoteUseCase) cacheSchedule(ctx context.Context, schedule *domain.PriceSchedule) {
	if uc.cache == nil {
		return
	}
	key := cache.ScheduleKey(schedule.ProductID.String(), schedule.CountryID, schedule.Currency)
	_ = uc.cache.Set(ctx, key, schedule, uc.scheduleTTL)
}

func (uc *QuoteUseCase) resolveRate(ctx context.Context, schedule *domain.PriceSchedule, req domain.CalculationRequest) (decimal.Decimal, error) {
	target := strings.ToUpper(req.Currency)
	if target == "" || target == schedule.Currency {
		return decimal.NewFromInt(1), nil
	}

	at := time.Now()
	if req.RentalStart != nil {
		at = *req.RentalStart
	}

	rate, err := uc.rates.Rate(ctx, schedule.Currency, target, at)
	if err != nil {
		if errors.Is(err, fx.ErrUnavailable) {
			return decimal.Zero, domain.NewCurrencyConversionError(
				"no exchange rate available",
				schedule.Currency+" -> "+target)
		}
		log.Error(ctx, "Failed to resolve exchange rate", zap.Error(err))
		return decimal.Zero, err
	}
	return rate, nil
}

func (uc *QuoteUseCase) publishQuoteComputed(ctx context.Context, result *domain.CalculationResult) {
	event := events.NewEvent(events.TypeQuoteComputed, result.ProductID.String(), map[string]interface{}{
		"product_id":        result.ProductID.String(),
		"country_id":        result.CountryID,
		"currency":          result.Currency,
		"tier":              string(result.BaseRateType),
		"total_amount":      result.TotalAmount.String(),
		"total_discount":    result.TotalDiscount.String(),
		"discounts_applied": result.DiscountsApplied,
	})
	if err := uc.publisher.Publish(ctx, event); err != nil {
		log.Warn(ctx, "Failed to publish quote event", zap.Error(err))
	}
}
