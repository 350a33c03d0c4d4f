package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_quotes_total",
			Help: "Total number of price quotes computed",
		},
		[]string{"tier", "currency", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricing_quote_duration_seconds",
			Help:    "Price calculation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	QuoteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_quote_errors_total",
			Help: "Total number of failed quote calculations by error code",
		},
		[]string{"code"},
	)

	DiscountAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricing_discount_amount",
			Help:    "Total discount amount distribution per quote",
			Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"currency"},
	)

	// Collaborator metrics
	ScheduleCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_schedule_cache_total",
			Help: "Schedule cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	RateCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_rate_cache_total",
			Help: "Exchange-rate cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// Administrative metrics
	BulkAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_bulk_adjustments_total",
			Help: "Total number of bulk schedule adjustments applied",
		},
		[]string{"status"},
	)

	SchedulesAdjusted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricing_schedules_adjusted_total",
			Help: "Total number of schedules touched by bulk adjustments",
		},
	)
)

// ObserveQuote records one quote computation
func ObserveQuote(tier, currency, status string, elapsed time.Duration) {
	QuotesTotal.WithLabelValues(tier, currency, status).Inc()
	QuoteDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// ObserveQuoteError records one failed quote by domain error code
func ObserveQuoteError(code string, elapsed time.Duration) {
	if code == "" {
		code = "INTERNAL"
	}
	QuoteErrors.WithLabelValues(code).Inc()
	QuoteDuration.WithLabelValues("error").Observe(elapsed.Seconds())
}
