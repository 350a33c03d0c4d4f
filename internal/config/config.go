package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the pricing service
type Config struct {
	AppName  string         `mapstructure:"app_name"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Cache    CacheConfig    `mapstructure:"cache"`
	FX       FXConfig       `mapstructure:"fx"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Address string `mapstructure:"address"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RedisConfig holds Redis configuration. An empty address disables the
// schedule/rate cache entirely.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

// KafkaConfig holds event publishing configuration. Empty brokers fall back
// to the no-op publisher.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// CacheConfig holds collaborator cache TTLs
type CacheConfig struct {
	ScheduleTTL time.Duration `mapstructure:"schedule_ttl"`
	RateTTL     time.Duration `mapstructure:"rate_ttl"`
}

// FXConfig holds the static exchange-rate table used when no external FX
// collaborator is wired in. Keys are "FROM/TO" currency pairs.
type FXConfig struct {
	StaticRates map[string]float64 `mapstructure:"static_rates"`
}

// TracingConfig holds OpenTelemetry configuration. Disabled by default.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Environment    string  `mapstructure:"environment"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SamplingRatio  float64 `mapstructure:"sampling_ratio"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app_name", "pricingservice")
	viper.SetDefault("http.address", ":8080")
	viper.SetDefault("metrics.address", ":9090")
	viper.SetDefault("postgres.max_conns", 10)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("kafka.topic", "pricing.events")
	viper.SetDefault("cache.schedule_ttl", "2m")
	viper.SetDefault("cache.rate_ttl", "5m")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.environment", "development")
	viper.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	viper.SetDefault("tracing.sampling_ratio", 1.0)
	viper.SetDefault("log.level", "info")
}

// Validate checks the loaded configuration for obvious miswiring
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return fmt.Errorf("http.address is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Postgres.MaxConns <= 0 {
		return fmt.Errorf("postgres.max_conns must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when brokers are set")
	}
	for pair, rate := range c.FX.StaticRates {
		if !strings.Contains(pair, "/") {
			return fmt.Errorf("fx.static_rates key %q must be a FROM/TO pair", pair)
		}
		if rate <= 0 {
			return fmt.Errorf("fx.static_rates[%q] must be positive", pair)
		}
	}
	return nil
}
