// Package config loads the gateway configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the complete gateway configuration. Every value lives for one
// serving process.
type Config struct {
	HTTPAddr       string        `env:"TIPGATE_HTTP_ADDR"       envDefault:":9000"`
	JWTSecret      string        `env:"TIPGATE_JWT_SECRET"`
	TokenTTL       time.Duration `env:"TIPGATE_TOKEN_TTL"       envDefault:"30m"`
	RequestTimeout time.Duration `env:"TIPGATE_REQUEST_TIMEOUT" envDefault:"10s"`
	CORSOrigins    []string      `env:"TIPGATE_CORS_ORIGINS"    envDefault:"*" envSeparator:","`
	TrustedProxies []string      `env:"TIPGATE_TRUSTED_PROXIES" envSeparator:","`

	Store      string `env:"TIPGATE_STORE"       envDefault:"memory"`
	RedisURL   string `env:"TIPGATE_REDIS_URL"   envDefault:"redis://localhost:6379/0"`
	SQLitePath string `env:"TIPGATE_SQLITE_PATH" envDefault:"data/tipgate.db"`

	RateLimit     int           `env:"TIPGATE_RATE_LIMIT"      envDefault:"5"`
	RateWindow    time.Duration `env:"TIPGATE_RATE_WINDOW"     envDefault:"60s"`
	RateTableSize int           `env:"TIPGATE_RATE_TABLE_SIZE" envDefault:"10000"`

	RequireChallenge   bool          `env:"TIPGATE_REQUIRE_CHALLENGE"   envDefault:"false"`
	ChallengeTTL       time.Duration `env:"TIPGATE_CHALLENGE_TTL"       envDefault:"5m"`
	AtomicProvisioning bool          `env:"TIPGATE_ATOMIC_PROVISIONING" envDefault:"false"`
	Events             bool          `env:"TIPGATE_EVENTS"              envDefault:"false"`

	LogLevel  string `env:"TIPGATE_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"TIPGATE_LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("TIPGATE_JWT_SECRET is required")
	}
	switch c.Store {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	if c.Events && c.RedisURL == "" {
		return errors.New("TIPGATE_EVENTS requires TIPGATE_REDIS_URL")
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("bad CORS origin %q", origin)
		}
	}
	for _, proxy := range c.TrustedProxies {
		if strings.Contains(proxy, "/") {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("bad trusted proxy %q: %w", proxy, err)
			}
		} else if net.ParseIP(proxy) == nil {
			return fmt.Errorf("bad trusted proxy %q", proxy)
		}
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
