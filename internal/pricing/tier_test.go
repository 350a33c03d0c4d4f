package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

func newTestSchedule() *domain.PriceSchedule {
	weekly := decimal.NewFromInt(300000)
	monthly := decimal.NewFromInt(1100000)
	s := &domain.PriceSchedule{
		ID:              uuid.New(),
		ProductID:       uuid.New(),
		CountryID:       "RW",
		Currency:        "RWF",
		DailyRate:       decimal.NewFromInt(50000),
		WeeklyRate:      &weekly,
		MonthlyRate:     &monthly,
		SecurityDeposit: decimal.NewFromInt(20000),
		EffectiveFrom:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:          true,
	}
	s.Normalize()
	return s
}

func TestSelectTier_WeeklyBoundary(t *testing.T) {
	s := newTestSchedule()

	sel, err := SelectTier(s, 167)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Tier != domain.TierDaily {
		t.Fatalf("expected daily tier at 167h, got %s", sel.Tier)
	}
	if sel.Count != 7 {
		t.Fatalf("expected 7 daily units for 167h, got %d", sel.Count)
	}

	sel, err = SelectTier(s, 168)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Tier != domain.TierWeekly {
		t.Fatalf("expected weekly tier at 168h, got %s", sel.Tier)
	}
	if sel.Count != 1 {
		t.Fatalf("expected 1 weekly unit for 168h, got %d", sel.Count)
	}
}

func TestSelectTier_MonthlyBoundary(t *testing.T) {
	s := newTestSchedule()

	sel, err := SelectTier(s, 720)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Tier != domain.TierMonthly || sel.Count != 1 {
		t.Fatalf("expected 1 monthly unit at 720h, got %d %s", sel.Count, sel.Tier)
	}

	sel, err = SelectTier(s, 1440)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Count != 2 {
		t.Fatalf("expected 2 monthly units at 1440h, got %d", sel.Count)
	}
}

func TestSelectTier_MonthlyDurationWithoutMonthlyRate(t *testing.T) {
	s := newTestSchedule()
	s.MonthlyRate = nil

	sel, err := SelectTier(s, 720)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// falls through to weekly, the next tier the duration qualifies for
	if sel.Tier != domain.TierWeekly {
		t.Fatalf("expected weekly fallback, got %s", sel.Tier)
	}
	if sel.Count != 5 {
		t.Fatalf("expected ceil(720/168)=5 weekly units, got %d", sel.Count)
	}
}

func TestSelectTier_HourlyPreferredBelowWeekly(t *testing.T) {
	s := newTestSchedule()
	hourly := decimal.NewFromInt(3000)
	s.HourlyRate = &hourly

	sel, err := SelectTier(s, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Tier != domain.TierHourly || sel.Count != 10 {
		t.Fatalf("expected 10 hourly units, got %d %s", sel.Count, sel.Tier)
	}
}

func TestSelectTier_BelowMinimumDuration(t *testing.T) {
	s := newTestSchedule()
	s.MinRentalDurationHours = 24

	_, err := SelectTier(s, 6)
	if !domain.IsCode(err, domain.ErrCodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestSelectTier_AboveMaximumDuration(t *testing.T) {
	s := newTestSchedule()
	maxDays := 30
	s.MaxRentalDurationDays = &maxDays

	_, err := SelectTier(s, 31*24)
	if !domain.IsCode(err, domain.ErrCodeRange) {
		t.Fatalf("expected RANGE_ERROR, got %v", err)
	}
}

func TestSelectTier_MissingDailyRate(t *testing.T) {
	s := newTestSchedule()
	s.DailyRate = decimal.Zero
	s.WeeklyRate = nil
	s.MonthlyRate = nil

	_, err := SelectTier(s, 48)
	if !domain.IsCode(err, domain.ErrCodeConfiguration) {
		t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
	}
}
