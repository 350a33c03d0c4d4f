package fx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned when no rate is known for a currency pair.
var ErrUnavailable = errors.New("exchange rate unavailable")

// Resolver supplies exchange rates to the quote flow. Rate acquisition is a
// collaborator concern; the pricing engine only consumes already-resolved
// values.
type Resolver interface {
	// Rate returns the conversion rate from one currency to another as of
	// the given date.
	Rate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error)
}

// PairKey builds the canonical "FROM/TO" key for a currency pair
func PairKey(from, to string) string {
	return fmt.Sprintf("%s/%s", strings.ToUpper(from), strings.ToUpper(to))
}

// StaticResolver serves rates from a fixed table. Used in development and
// tests, and as the fallback when no external FX provider is configured.
type StaticResolver struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

// NewStaticResolver creates a resolver over a FROM/TO keyed rate table
func NewStaticResolver(rates map[string]float64) *StaticResolver {
	table := make(map[string]decimal.Decimal, len(rates))
	for pair, rate := range rates {
		table[strings.ToUpper(pair)] = decimal.NewFromFloat(rate)
	}
	return &StaticResolver{rates: table}
}

// SetRate adds or replaces a rate for a pair
func (r *StaticResolver) SetRate(from, to string, rate decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates[PairKey(from, to)] = rate
}

// Rate implements Resolver
func (r *StaticResolver) Rate(ctx context.Context, from, to string, at time.Time) (decimal.Decimal, error) {
	if strings.EqualFold(from, to) {
		return decimal.NewFromInt(1), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if rate, ok := r.rates[PairKey(from, to)]; ok {
		return rate, nil
	}
	// derive from the inverse pair when only one direction is configured
	if inverse, ok := r.rates[PairKey(to, from)]; ok && inverse.IsPositive() {
		return decimal.NewFromInt(1).DivRound(inverse, 12), nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s", ErrUnavailable, PairKey(from, to))
}
