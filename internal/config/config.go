// Package config loads runtime configuration from environment variables.
// The binaries call godotenv first so a local .env file can supply them.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds every setting used by the binaries. Nested groups carry
// their own env tags.
type Config struct {
	Env            string        `env:"APP_ENV, default=development"`
	Port           string        `env:"APP_PORT, default=8080"`
	LogLevel       string        `env:"LOG_LEVEL, default=info"`
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL, default=720h"`
	NamePepper     string        `env:"NAME_HASH_PEPPER"`
	Timezone       string        `env:"TIMEZONE, default=UTC"`
	AdminIDs       []uint64      `env:"ADMIN_IDS"`

	DB        DBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Rabbit    RabbitConfig
	Notifier  NotifierConfig
}

// DBConfig locates the MySQL database.
type DBConfig struct {
	User         string        `env:"DB_USER, default=root"`
	Pass         string        `env:"DB_PASS"`
	Host         string        `env:"DB_HOST, default=127.0.0.1"`
	Port         string        `env:"DB_PORT, default=3306"`
	Name         string        `env:"DB_NAME, default=dorm_booking"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS, default=25"`
	ConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME, default=30m"`
}

// RabbitConfig locates the broker. An empty URL disables publishing.
type RabbitConfig struct {
	URL          string `env:"RABBITMQ_URL"`
	AuditEnabled bool   `env:"AUDIT_CONSUMER_ENABLED, default=false"`
	AuditLogPath string `env:"AUDIT_LOG_PATH"`
}

// NotifierConfig drives the reminder loop.
type NotifierConfig struct {
	Interval time.Duration `env:"NOTIFIER_INTERVAL, default=1m"`
}

// Load reads the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l; tests pass a map lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.RateLimit.normalize()
	return &cfg, nil
}

// Location resolves Timezone; booking dates and "today" are computed in it.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsProduction reports whether APP_ENV is "production" or "prod".
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
