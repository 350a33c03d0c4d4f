package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

// MemoryStore is an in-memory implementation of ScheduleRepository, used in
// tests and local development.
type MemoryStore struct {
	mu        sync.RWMutex
	schedules map[uuid.UUID]*domain.PriceSchedule
}

// NewMemoryStore creates an empty in-memory schedule store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{schedules: make(map[uuid.UUID]*domain.PriceSchedule)}
}

// ResolveActive implements ScheduleRepository
func (s *MemoryStore) ResolveActive(ctx context.Context, productID uuid.UUID, countryID, currency string, at time.Time) (*domain.PriceSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, schedule := range s.schedules {
		if schedule.ProductID == productID &&
			schedule.CountryID == countryID &&
			schedule.Currency == currency &&
			schedule.EffectiveAt(at) {
			clone := *schedule
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

// ResolveActiveAnyCurrency implements ScheduleRepository
func (s *MemoryStore) ResolveActiveAnyCurrency(ctx context.Context, productID uuid.UUID, countryID string, at time.Time) (*domain.PriceSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *domain.PriceSchedule
	for _, schedule := range s.schedules {
		if schedule.ProductID != productID ||
			schedule.CountryID != countryID ||
			!schedule.EffectiveAt(at) {
			continue
		}
		if best == nil || schedule.Currency < best.Currency {
			best = schedule
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	clone := *best
	return &clone, nil
}

// GetByID implements ScheduleRepository
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.PriceSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, ok := s.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *schedule
	return &clone, nil
}

// Upsert implements ScheduleRepository
func (s *MemoryStore) Upsert(ctx context.Context, schedule *domain.PriceSchedule) (*domain.PriceSchedule, error) {
	schedule.Normalize()
	if err := schedule.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}
	now := time.Now()
	if existing, ok := s.schedules[schedule.ID]; ok {
		schedule.CreatedAt = existing.CreatedAt
	} else {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	clone := *schedule
	s.schedules[schedule.ID] = &clone
	saved := clone
	return &saved, nil
}

// List implements ScheduleRepository. Results are ordered by country,
// product and effective_from so offset paging is stable across calls.
func (s *MemoryStore) List(ctx context.Context, countryID string, limit, offset int) ([]*domain.PriceSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var matched []*domain.PriceSchedule
	for _, schedule := range s.schedules {
		if countryID != "" && schedule.CountryID != countryID {
			continue
		}
		matched = append(matched, schedule)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CountryID != b.CountryID {
			return a.CountryID < b.CountryID
		}
		if a.ProductID != b.ProductID {
			return a.ProductID.String() < b.ProductID.String()
		}
		return a.EffectiveFrom.Before(b.EffectiveFrom)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*domain.PriceSchedule, 0, len(matched))
	for _, schedule := range matched {
		clone := *schedule
		out = append(out, &clone)
	}
	return out, nil
}

// BulkAdjust implements ScheduleRepository
func (s *MemoryStore) BulkAdjust(ctx context.Context, adjustment domain.BulkAdjustment) (int64, error) {
	if err := adjustment.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products := make(map[uuid.UUID]bool, len(adjustment.ProductIDs))
	for _, id := range adjustment.ProductIDs {
		products[id] = true
	}

	var touched int64
	for _, schedule := range s.schedules {
		if len(products) > 0 && !products[schedule.ProductID] {
			continue
		}
		if adjustment.CountryID != "" && schedule.CountryID != adjustment.CountryID {
			continue
		}
		if adjustment.Currency != "" && schedule.Currency != adjustment.Currency {
			continue
		}

		applyAdjustment(schedule, adjustment)
		schedule.UpdatedAt = time.Now()
		touched++
	}
	return touched, nil
}

// Delete implements ScheduleRepository
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}

func applyAdjustment(schedule *domain.PriceSchedule, adjustment domain.BulkAdjustment) {
	if !adjustment.RateChangePct.IsZero() {
		factor := adjustment.RateChangePct.Add(decimal.NewFromInt(1))
		schedule.DailyRate = schedule.DailyRate.Mul(factor)
		if schedule.HourlyRate != nil {
			adjusted := schedule.HourlyRate.Mul(factor)
			schedule.HourlyRate = &adjusted
		}
		if schedule.WeeklyRate != nil {
			adjusted := schedule.WeeklyRate.Mul(factor)
			schedule.WeeklyRate = &adjusted
		}
		if schedule.MonthlyRate != nil {
			adjusted := schedule.MonthlyRate.Mul(factor)
			schedule.MonthlyRate = &adjusted
		}
	}
	if adjustment.WeeklyDiscountPct != nil {
		schedule.WeeklyDiscountPct = *adjustment.WeeklyDiscountPct
	}
	if adjustment.MonthlyDiscountPct != nil {
		schedule.MonthlyDiscountPct = *adjustment.MonthlyDiscountPct
	}
	if adjustment.BulkDiscountPct != nil {
		schedule.BulkDiscountPct = *adjustment.BulkDiscountPct
	}
	if adjustment.BulkDiscountThreshold != nil {
		schedule.BulkDiscountThreshold = *adjustment.BulkDiscountThreshold
	}
	if adjustment.Active != nil {
		schedule.Active = *adjustment.Active
	}
}
