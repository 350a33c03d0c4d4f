package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
	"github.com/kora-rentals/pricingservice/internal/pricing/repo"
)

// Store is the PostgreSQL implementation of repo.ScheduleRepository
type Store struct {
	db *pgxpool.Pool
}

// NewStore creates a new PostgreSQL store over an existing pool
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("database pool cannot be nil")
	}
	return &Store{db: pool}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

const scheduleColumns = `
	id, product_id, country_id, currency,
	hourly_rate, daily_rate, weekly_rate, monthly_rate, security_deposit,
	market_adjustment_factor, dynamic_pricing_enabled,
	peak_season_multiplier, off_season_multiplier, seasons,
	min_rental_duration_hours, max_rental_duration_days,
	early_return_fee_pct, late_return_fee_per_hour,
	weekly_discount_pct, monthly_discount_pct,
	bulk_discount_threshold, bulk_discount_pct,
	effective_from, effective_until, active, created_at, updated_at`

// ResolveActive returns the single active schedule effective at the instant.
// Effective windows of active schedules never overlap per triple, enforced by
// an exclusion constraint on the table.
func (s *Store) ResolveActive(ctx context.Context, productID uuid.UUID, countryID, currency string, at time.Time) (*domain.PriceSchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM price_schedules
		WHERE product_id = $1 AND country_id = $2 AND currency = $3
		  AND active
		  AND effective_from <= $4
		  AND (effective_until IS NULL OR effective_until > $4)
		LIMIT 1`

	row := s.db.QueryRow(ctx, query, productID, countryID, currency, at)
	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve active schedule: %w", err)
	}
	return schedule, nil
}

// ResolveActiveAnyCurrency returns an active schedule for the product and
// country regardless of priced currency, preferring the lexically first
// currency so resolution stays deterministic.
func (s *Store) ResolveActiveAnyCurrency(ctx context.Context, productID uuid.UUID, countryID string, at time.Time) (*domain.PriceSchedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM price_schedules
		WHERE product_id = $1 AND country_id = $2
		  AND active
		  AND effective_from <= $3
		  AND (effective_until IS NULL OR effective_until > $3)
		ORDER BY currency
		LIMIT 1`

	row := s.db.QueryRow(ctx, query, productID, countryID, at)
	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve active schedule: %w", err)
	}
	return schedule, nil
}

// GetByID retrieves a schedule by ID
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*domain.PriceSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM price_schedules WHERE id = $1`

	row := s.db.QueryRow(ctx, query, id)
	schedule, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return schedule, nil
}

// Upsert creates or updates a schedule
func (s *Store) Upsert(ctx context.Context, schedule *domain.PriceSchedule) (*domain.PriceSchedule, error) {
	schedule.Normalize()
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	if schedule.ID == uuid.Nil {
		schedule.ID = uuid.New()
	}

	seasons, err := json.Marshal(schedule.Seasons)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal seasons: %w", err)
	}

	query := `INSERT INTO price_schedules (` + strings.TrimSpace(scheduleColumns) + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			hourly_rate = EXCLUDED.hourly_rate,
			daily_rate = EXCLUDED.daily_rate,
			weekly_rate = EXCLUDED.weekly_rate,
			monthly_rate = EXCLUDED.monthly_rate,
			security_deposit = EXCLUDED.security_deposit,
			market_adjustment_factor = EXCLUDED.market_adjustment_factor,
			dynamic_pricing_enabled = EXCLUDED.dynamic_pricing_enabled,
			peak_season_multiplier = EXCLUDED.peak_season_multiplier,
			off_season_multiplier = EXCLUDED.off_season_multiplier,
			seasons = EXCLUDED.seasons,
			min_rental_duration_hours = EXCLUDED.min_rental_duration_hours,
			max_rental_duration_days = EXCLUDED.max_rental_duration_days,
			early_return_fee_pct = EXCLUDED.early_return_fee_pct,
			late_return_fee_per_hour = EXCLUDED.late_return_fee_per_hour,
			weekly_discount_pct = EXCLUDED.weekly_discount_pct,
			monthly_discount_pct = EXCLUDED.monthly_discount_pct,
			bulk_discount_threshold = EXCLUDED.bulk_discount_threshold,
			bulk_discount_pct = EXCLUDED.bulk_discount_pct,
			effective_from = EXCLUDED.effective_from,
			effective_until = EXCLUDED.effective_until,
			active = EXCLUDED.active,
			updated_at = now()
		RETURNING ` + scheduleColumns

	row := s.db.QueryRow(ctx, query,
		schedule.ID, schedule.ProductID, schedule.CountryID, schedule.Currency,
		nullDecimal(schedule.HourlyRate), schedule.DailyRate,
		nullDecimal(schedule.WeeklyRate), nullDecimal(schedule.MonthlyRate),
		schedule.SecurityDeposit,
		schedule.MarketAdjustmentFactor, schedule.DynamicPricingEnabled,
		schedule.PeakSeasonMultiplier, schedule.OffSeasonMultiplier, seasons,
		schedule.MinRentalDurationHours, schedule.MaxRentalDurationDays,
		schedule.EarlyReturnFeePct, schedule.LateReturnFeePerHour,
		schedule.WeeklyDiscountPct, schedule.MonthlyDiscountPct,
		schedule.BulkDiscountThreshold, schedule.BulkDiscountPct,
		schedule.EffectiveFrom, schedule.EffectiveUntil, schedule.Active)

	saved, err := scanSchedule(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert schedule: %w", err)
	}
	return saved, nil
}

// List retrieves schedules for a country, all countries when empty
func (s *Store) List(ctx context.Context, countryID string, limit, offset int) ([]*domain.PriceSchedule, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + scheduleColumns + `
		FROM price_schedules
		WHERE ($1 = '' OR country_id = $1)
		ORDER BY country_id, product_id, effective_from
		LIMIT $2 OFFSET $3`

	rows, err := s.db.Query(ctx, query, countryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*domain.PriceSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	return schedules, nil
}

// BulkAdjust applies an administrative adjustment to every matching schedule
func (s *Store) BulkAdjust(ctx context.Context, adjustment domain.BulkAdjustment) (int64, error) {
	if err := adjustment.Validate(); err != nil {
		return 0, err
	}

	var sets []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !adjustment.RateChangePct.IsZero() {
		factor := arg(decimal.NewFromInt(1).Add(adjustment.RateChangePct))
		sets = append(sets,
			fmt.Sprintf("hourly_rate = hourly_rate * %s", factor),
			fmt.Sprintf("daily_rate = daily_rate * %s", factor),
			fmt.Sprintf("weekly_rate = weekly_rate * %s", factor),
			fmt.Sprintf("monthly_rate = monthly_rate * %s", factor),
		)
	}
	if adjustment.WeeklyDiscountPct != nil {
		sets = append(sets, fmt.Sprintf("weekly_discount_pct = %s", arg(*adjustment.WeeklyDiscountPct)))
	}
	if adjustment.MonthlyDiscountPct != nil {
		sets = append(sets, fmt.Sprintf("monthly_discount_pct = %s", arg(*adjustment.MonthlyDiscountPct)))
	}
	if adjustment.BulkDiscountPct != nil {
		sets = append(sets, fmt.Sprintf("bulk_discount_pct = %s", arg(*adjustment.BulkDiscountPct)))
	}
	if adjustment.BulkDiscountThreshold != nil {
		sets = append(sets, fmt.Sprintf("bulk_discount_threshold = %s", arg(*adjustment.BulkDiscountThreshold)))
	}
	if adjustment.Active != nil {
		sets = append(sets, fmt.Sprintf("active = %s", arg(*adjustment.Active)))
	}
	sets = append(sets, "updated_at = now()")

	var wheres []string
	if len(adjustment.ProductIDs) > 0 {
		wheres = append(wheres, fmt.Sprintf("product_id = ANY(%s)", arg(adjustment.ProductIDs)))
	}
	if adjustment.CountryID != "" {
		wheres = append(wheres, fmt.Sprintf("country_id = %s", arg(strings.ToUpper(adjustment.CountryID))))
	}
	if adjustment.Currency != "" {
		wheres = append(wheres, fmt.Sprintf("currency = %s", arg(strings.ToUpper(adjustment.Currency))))
	}

	query := "UPDATE price_schedules SET " + strings.Join(sets, ", ")
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk adjust schedules: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a schedule
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM price_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func scanSchedule(row pgx.Row) (*domain.PriceSchedule, error) {
	var (
		s          domain.PriceSchedule
		hourly     decimal.NullDecimal
		weekly     decimal.NullDecimal
		monthly    decimal.NullDecimal
		seasonsRaw []byte
	)

	err := row.Scan(
		&s.ID, &s.ProductID, &s.CountryID, &s.Currency,
		&hourly, &s.DailyRate, &weekly, &monthly, &s.SecurityDeposit,
		&s.MarketAdjustmentFactor, &s.DynamicPricingEnabled,
		&s.PeakSeasonMultiplier, &s.OffSeasonMultiplier, &seasonsRaw,
		&s.MinRentalDurationHours, &s.MaxRentalDurationDays,
		&s.EarlyReturnFeePct, &s.LateReturnFeePerHour,
		&s.WeeklyDiscountPct, &s.MonthlyDiscountPct,
		&s.BulkDiscountThreshold, &s.BulkDiscountPct,
		&s.EffectiveFrom, &s.EffectiveUntil, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if hourly.Valid {
		s.HourlyRate = &hourly.Decimal
	}
	if weekly.Valid {
		s.WeeklyRate = &weekly.Decimal
	}
	if monthly.Valid {
		s.MonthlyRate = &monthly.Decimal
	}
	if len(seasonsRaw) > 0 {
		if err := json.Unmarshal(seasonsRaw, &s.Seasons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal seasons: %w", err)
		}
	}

	s.Normalize()
	return &s, nil
}
