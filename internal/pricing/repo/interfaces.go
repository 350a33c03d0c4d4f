package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// ErrNotFound is returned when no matching schedule exists
var ErrNotFound = errors.New("schedule not found")

// ScheduleRepository defines the interface for price schedule storage. At
// most one active schedule may be effective per (product, country, currency)
// at any instant; ResolveActive relies on that invariant.
type ScheduleRepository interface {
	// ResolveActive returns the single active schedule effective at the
	// given instant for the product/country/currency triple.
	ResolveActive(ctx context.Context, productID uuid.UUID, countryID, currency string, at time.Time) (*domain.PriceSchedule, error)

	// ResolveActiveAnyCurrency returns an active schedule effective at the
	// given instant for the product/country pair regardless of priced
	// currency. When the product is priced in several currencies the one
	// first in lexical currency order wins, so resolution is deterministic.
	ResolveActiveAnyCurrency(ctx context.Context, productID uuid.UUID, countryID string, at time.Time) (*domain.PriceSchedule, error)

	// GetByID retrieves a schedule by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PriceSchedule, error)

	// Upsert creates or updates a schedule
	Upsert(ctx context.Context, schedule *domain.PriceSchedule) (*domain.PriceSchedule, error)

	// List retrieves schedules for a country, all countries when empty
	List(ctx context.Context, countryID string, limit, offset int) ([]*domain.PriceSchedule, error)

	// BulkAdjust applies an administrative adjustment to every matching
	// schedule and returns the number touched.
	BulkAdjust(ctx context.Context, adjustment domain.BulkAdjustment) (int64, error)

	// Delete removes a schedule
	Delete(ctx context.Context, id uuid.UUID) error
}
