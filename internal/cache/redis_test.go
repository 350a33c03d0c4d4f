package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewCache(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_ScheduleRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	schedule := &domain.PriceSchedule{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		CountryID: "RW",
		Currency:  "RWF",
		DailyRate: decimal.NewFromInt(50000),
		Active:    true,
	}
	schedule.Normalize()

	key := ScheduleKey(schedule.ProductID.String(), schedule.CountryID, schedule.Currency)
	if err := c.Set(ctx, key, schedule, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got domain.PriceSchedule
	if err := c.Get(ctx, key, &got); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != schedule.ID {
		t.Fatalf("expected id %s, got %s", schedule.ID, got.ID)
	}
	if !got.DailyRate.Equal(schedule.DailyRate) {
		t.Fatalf("expected daily rate %s, got %s", schedule.DailyRate, got.DailyRate)
	}
}

func TestCache_MissReturnsErrMiss(t *testing.T) {
	c := newTestCache(t)

	var dest domain.PriceSchedule
	err := c.Get(context.Background(), ScheduleKey("none", "RW", "RWF"), &dest)
	if !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestCache_DeletePrefix(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	keys := []string{
		ScheduleKey("p1", "RW", "RWF"),
		ScheduleKey("p2", "RW", "RWF"),
		RateKey("RWF", "USD"),
	}
	for _, key := range keys {
		if err := c.Set(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := c.DeletePrefix(ctx, "sched:"); err != nil {
		t.Fatalf("delete prefix failed: %v", err)
	}

	for _, key := range keys[:2] {
		exists, err := c.Exists(ctx, key)
		if err != nil {
			t.Fatalf("exists failed: %v", err)
		}
		if exists {
			t.Fatalf("expected %s evicted", key)
		}
	}
	exists, err := c.Exists(ctx, keys[2])
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !exists {
		t.Fatal("rate keys must survive schedule invalidation")
	}
}
