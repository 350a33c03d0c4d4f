package fx

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/cache"
	"github.com/kora-rentals/pricingservice/internal/metrics"
)

// CachedResolver decorates a Resolver with a Redis cache. The TTL belongs to
// the FX collaborator, not to pricing logic.
type CachedResolver struct {
	next  Resolver
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachedResolver wraps a resolver with a cache layer
func NewCachedResolver(next Resolver, c *cache.Cache, ttl time.Duration) *CachedResolver {
	return &CachedResolver{next: next, cache: c, ttl: ttl}
}

// Rate implements Resolver
func (r *CachedResolver) Rate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error) {
	key := cache.RateKey(from, to)

	var cached string
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		if rate, parseErr := decimal.NewFromString(cached); parseErr == nil {
			metrics.RateCacheHits.WithLabelValues("hit").Inc()
			return rate, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		// cache trouble degrades to the underlying resolver
		metrics.RateCacheHits.WithLabelValues("error").Inc()
	} else {
		metrics.RateCacheHits.WithLabelValues("miss").Inc()
	}

	rate, err := r.next.Rate(ctx, from, to, at)
	if err != nil {
		return decimal.Zero, err
	}

	_ = r.cache.Set(ctx, key, rate.String(), r.ttl)
	return rate, nil
}
