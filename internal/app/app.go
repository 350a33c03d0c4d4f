package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kora-rentals/pricingservice/internal/cache"
	"github.com/kora-rentals/pricingservice/internal/config"
	"github.com/kora-rentals/pricingservice/internal/db"
	"github.com/kora-rentals/pricingservice/internal/events"
	"github.com/kora-rentals/pricingservice/internal/fx"
	"github.com/kora-rentals/pricingservice/internal/log"
	"github.com/kora-rentals/pricingservice/internal/metrics"
	"github.com/kora-rentals/pricingservice/internal/pricing/repo/postgres"
	"github.com/kora-rentals/pricingservice/internal/pricing/usecase"
	"github.com/kora-rentals/pricingservice/internal/tracing"
	transport "github.com/kora-rentals/pricingservice/internal/transport/http"
)

// App wires storage, cache, events and the HTTP surface together.
type App struct {
	config        *config.Config
	logger        *zap.Logger
	dbPool        *db.Pool
	cache         *cache.Cache
	publisher     events.Publisher
	httpServer    *transport.Server
	metricsServer *metrics.Server
	stopTracing   func()
}

// New builds the application from configuration. Redis and Kafka are
// optional collaborators: a missing address degrades to uncached quotes
// and unpublished events rather than a failed boot.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := log.Init(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := log.L(ctx)

	logger.Info("Initializing pricing service",
		zap.String("app_name", cfg.AppName),
		zap.String("http_address", cfg.HTTP.Address))

	stopTracing := func() {}
	if cfg.Tracing.Enabled {
		stop, err := tracing.Init(tracing.Config{
			ServiceName:    cfg.AppName,
			Environment:    cfg.Tracing.Environment,
			JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
			SamplingRatio:  cfg.Tracing.SamplingRatio,
		}, logger)
		if err != nil {
			logger.Warn("Tracing unavailable, continuing without spans", zap.Error(err))
		} else {
			stopTracing = stop
		}
	}

	dbPool, err := db.NewPool(ctx, &db.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var scheduleCache *cache.Cache
	if cfg.Redis.Addr != "" {
		scheduleCache, err = cache.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("Redis unavailable, continuing without cache",
				zap.String("redis_addr", cfg.Redis.Addr),
				zap.Error(err))
			scheduleCache = nil
		}
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warn("Kafka unavailable, continuing without event publishing",
				zap.Strings("brokers", cfg.Kafka.Brokers),
				zap.Error(err))
		} else {
			publisher = kafkaPublisher
		}
	}

	schedules, err := postgres.NewStore(dbPool.Pool)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to initialize schedule store: %w", err)
	}

	var rates fx.Resolver = fx.NewStaticResolver(cfg.FX.StaticRates)
	if scheduleCache != nil {
		rates = fx.NewCachedResolver(rates, scheduleCache, cfg.Cache.RateTTL)
	}

	quotes := usecase.NewQuoteUseCase(schedules, rates, scheduleCache, cfg.Cache.ScheduleTTL, publisher)
	admin := usecase.NewAdjustmentUseCase(schedules, scheduleCache, publisher)

	router := transport.NewRouter(quotes, admin)

	return &App{
		config:        cfg,
		logger:        logger,
		dbPool:        dbPool,
		cache:         scheduleCache,
		publisher:     publisher,
		httpServer:    transport.NewServer(cfg.HTTP.Address, router),
		metricsServer: metrics.NewServer(cfg.Metrics.Address, logger),
		stopTracing:   stopTracing,
	}, nil
}

// Run serves HTTP and metrics until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.httpServer.Start(ctx)
	})
	group.Go(func() error {
		return a.metricsServer.Start(ctx)
	})
	group.Go(func() error {
		<-ctx.Done()
		return a.Shutdown(context.Background())
	})

	return group.Wait()
}

// Shutdown drains the servers and closes collaborators.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down pricing service")

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}
	if err := a.metricsServer.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to shut down metrics server", zap.Error(err))
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("Failed to close event publisher", zap.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("Failed to close cache", zap.Error(err))
		}
	}
	a.dbPool.Close()
	a.stopTracing()

	a.logger.Info("Shutdown complete")
	return nil
}
