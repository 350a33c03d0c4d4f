package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/kora-rentals/pricingservice/internal/cache"
	"github.com/kora-rentals/pricingservice/internal/events"
	"github.com/kora-rentals/pricingservice/internal/log"
	"github.com/kora-rentals/pricingservice/internal/metrics"
	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
	"github.com/kora-rentals/pricingservice/internal/pricing/repo"
	"github.com/kora-rentals/pricingservice/internal/tracing"
)

// AdjustmentUseCase carries the administrative schedule workflow: upserting
// schedules and applying bulk adjustments. Quotes pick the changes up on the
// next calculation; results already returned are never revised.
type AdjustmentUseCase struct {
	schedules repo.ScheduleRepository
	cache     *cache.Cache
	publisher events.Publisher
}

// NewAdjustmentUseCase creates an adjustment use case. Cache may be nil.
func NewAdjustmentUseCase(schedules repo.ScheduleRepository, c *cache.Cache, publisher events.Publisher) *AdjustmentUseCase {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AdjustmentUseCase{schedules: schedules, cache: c, publisher: publisher}
}

// UpsertSchedule validates and stores a schedule
func (uc *AdjustmentUseCase) UpsertSchedule(ctx context.Context, schedule *domain.PriceSchedule) (*domain.PriceSchedule, error) {
	schedule.Normalize()
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	saved, err := uc.schedules.Upsert(ctx, schedule)
	if err != nil {
		log.Error(ctx, "Failed to upsert schedule",
			zap.String("product_id", schedule.ProductID.String()),
			zap.Error(err))
		return nil, err
	}

	uc.invalidate(ctx)

	log.Info(ctx, "Schedule upserted",
		zap.String("schedule_id", saved.ID.String()),
		zap.String("product_id", saved.ProductID.String()),
		zap.String("country_id", saved.CountryID),
		zap.String("currency", saved.Currency))

	return saved, nil
}

// ListSchedules retrieves schedules for a country, all countries when empty
func (uc *AdjustmentUseCase) ListSchedules(ctx context.Context, countryID string, limit, offset int) ([]*domain.PriceSchedule, error) {
	schedules, err := uc.schedules.List(ctx, countryID, limit, offset)
	if err != nil {
		log.Error(ctx, "Failed to list schedules", zap.Error(err))
		return nil, err
	}
	return schedules, nil
}

// ApplyBulkAdjustment applies a percentage rate change, discount updates and
// activation toggles to every matching schedule, then invalidates cached
// snapshots so the next quote sees the new prices.
func (uc *AdjustmentUseCase) ApplyBulkAdjustment(ctx context.Context, adjustment domain.BulkAdjustment) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "pricing.bulk_adjust")
	defer span.End()
	tracing.SetSpanAttributes(ctx,
		attribute.String("country_id", adjustment.CountryID),
		attribute.String("rate_change_pct", adjustment.RateChangePct.String()))

	if err := adjustment.Validate(); err != nil {
		tracing.RecordError(ctx, err)
		return 0, err
	}

	touched, err := uc.schedules.BulkAdjust(ctx, adjustment)
	if err != nil {
		log.Error(ctx, "Failed to apply bulk adjustment", zap.Error(err))
		tracing.RecordError(ctx, err)
		metrics.BulkAdjustments.WithLabelValues("error").Inc()
		return 0, err
	}
	tracing.SetSpanAttributes(ctx, attribute.Int64("schedules_touched", touched))

	uc.invalidate(ctx)

	metrics.BulkAdjustments.WithLabelValues("ok").Inc()
	metrics.SchedulesAdjusted.Add(float64(touched))

	event := events.NewEvent(events.TypeSchedulesAdjusted, adjustment.CountryID, map[string]interface{}{
		"country_id":      adjustment.CountryID,
		"currency":        adjustment.Currency,
		"rate_change_pct": adjustment.RateChangePct.String(),
		"touched":         touched,
	})
	if err := uc.publisher.Publish(ctx, event); err != nil {
		log.Warn(ctx, "Failed to publish adjustment event", zap.Error(err))
	}

	log.Info(ctx, "Bulk adjustment applied",
		zap.String("country_id", adjustment.CountryID),
		zap.String("rate_change_pct", adjustment.RateChangePct.String()),
		zap.Int64("schedules_touched", touched))

	return touched, nil
}

func (uc *AdjustmentUseCase) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePrefix(ctx, "sched:"); err != nil {
		log.Warn(ctx, "Failed to invalidate schedule cache", zap.Error(err))
	}
}
