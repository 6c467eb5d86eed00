// Package config loads the engagement service configuration from environment variables.
// envconfig maps the variables onto struct fields; godotenv fills the environment
// from a local .env file first when one exists.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"

	"bahth.org/engagement/internal/common"
)

// Config holds ALL application settings.
type Config struct {
	// --- HTTP ---
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// argon2id hash of the bearer token the platform gateway presents.
	GatewayTokenHash string `envconfig:"GATEWAY_TOKEN_HASH" required:"true"`

	// --- Database ---
	// Inside docker-compose the database host is the service name, override DB_HOST=localhost for local runs.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"bahth"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"bahth"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Redis ---
	// Empty address disables the catalog cache and the job locks.
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:""`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	CatalogCacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"10m"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Asia/Riyadh"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Jobs ---
	RecomputeSchedule        string `envconfig:"RECOMPUTE_SCHEDULE" default:"0 3 * * *"`
	AchievementSweepSchedule string `envconfig:"ACHIEVEMENT_SWEEP_SCHEDULE" default:"30 * * * *"`

	// --- Feature Flags ---
	FeatureNotificationsEnabled bool `envconfig:"FEATURE_NOTIFICATIONS_ENABLED" default:"true"`
	FeatureSweepsEnabled        bool `envconfig:"FEATURE_SWEEPS_ENABLED" default:"true"`
}

// DatabaseDSN returns the PostgreSQL connection string in URL form.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Location resolves AppTimezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	return common.LoadLocation(c.AppTimezone)
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be > 0")
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if c.CatalogCacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be > 0")
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.AppTimezone, err)
	}
	if _, err := cron.ParseStandard(c.RecomputeSchedule); err != nil {
		return fmt.Errorf("RECOMPUTE_SCHEDULE %q: %w", c.RecomputeSchedule, err)
	}
	if _, err := cron.ParseStandard(c.AchievementSweepSchedule); err != nil {
		return fmt.Errorf("ACHIEVEMENT_SWEEP_SCHEDULE %q: %w", c.AchievementSweepSchedule, err)
	}
	return nil
}

// Load reads an optional .env file, then the environment, into Config.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
