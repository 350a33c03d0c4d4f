package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kora-rentals/pricingservice/internal/config"
	"github.com/kora-rentals/pricingservice/internal/db"
	sharedlog "github.com/kora-rentals/pricingservice/internal/log"
	"github.com/kora-rentals/pricingservice/internal/pricing/domain"
	"github.com/kora-rentals/pricingservice/internal/pricing/repo/postgres"
)

// Expected CSV columns, in order:
// product_id, country_id, currency, hourly_rate, daily_rate, weekly_rate,
// monthly_rate, security_deposit, market_adjustment_factor,
// weekly_discount_pct, monthly_discount_pct, bulk_discount_threshold,
// bulk_discount_pct, effective_from
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: import-schedules <csv-file-path>")
	}

	csvFilePath := os.Args[1]

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := sharedlog.Init(cfg.Log.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx := context.Background()

	dbPool, err := db.NewPool(ctx, &db.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer dbPool.Close()

	store, err := postgres.NewStore(dbPool.Pool)
	if err != nil {
		log.Fatalf("Failed to create schedule store: %v", err)
	}

	schedules, err := readSchedulesFromCSV(csvFilePath)
	if err != nil {
		log.Fatalf("Failed to read schedules from CSV: %v", err)
	}

	fmt.Printf("Loaded %d price schedules from CSV\n", len(schedules))

	imported := 0
	for _, schedule := range schedules {
		if _, err := store.Upsert(ctx, schedule); err != nil {
			fmt.Printf("Warning: failed to import schedule for product %s: %v\n",
				schedule.ProductID, err)
			continue
		}
		imported++
	}

	fmt.Printf("Successfully imported %d of %d price schedules\n", imported, len(schedules))
}

func readSchedulesFromCSV(filePath string) ([]*domain.PriceSchedule, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var schedules []*domain.PriceSchedule

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		if len(record) < 14 {
			continue // Skip incomplete records
		}

		productID, err := uuid.Parse(strings.TrimSpace(record[0]))
		if err != nil {
			fmt.Printf("Warning: invalid product id: %s\n", record[0])
			continue
		}

		dailyRate, err := decimal.NewFromString(strings.TrimSpace(record[4]))
		if err != nil {
			fmt.Printf("Warning: invalid daily rate for %s: %s\n", productID, record[4])
			continue
		}

		effectiveFrom := time.Now()
		if raw := strings.TrimSpace(record[13]); raw != "" {
			effectiveFrom, err = time.Parse(time.RFC3339, raw)
			if err != nil {
				fmt.Printf("Warning: invalid effective_from for %s: %s\n", productID, record[13])
				continue
			}
		}

		schedule := &domain.PriceSchedule{
			ProductID:              productID,
			CountryID:              strings.ToUpper(strings.TrimSpace(record[1])),
			Currency:               strings.ToUpper(strings.TrimSpace(record[2])),
			HourlyRate:             optionalDecimal(record[3]),
			DailyRate:              dailyRate,
			WeeklyRate:             optionalDecimal(record[5]),
			MonthlyRate:            optionalDecimal(record[6]),
			SecurityDeposit:        decimalOrZero(record[7]),
			MarketAdjustmentFactor: decimalOrZero(record[8]),
			WeeklyDiscountPct:      decimalOrZero(record[9]),
			MonthlyDiscountPct:     decimalOrZero(record[10]),
			BulkDiscountThreshold:  intOrZero(record[11]),
			BulkDiscountPct:        decimalOrZero(record[12]),
			EffectiveFrom:          effectiveFrom,
			Active:                 true,
		}
		schedule.Normalize()
		if err := schedule.Validate(); err != nil {
			fmt.Printf("Warning: invalid schedule for %s: %v\n", productID, err)
			continue
		}

		schedules = append(schedules, schedule)
	}

	return schedules, nil
}

func optionalDecimal(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &value
}

func decimalOrZero(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func intOrZero(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return value
}
