package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TIPGATE_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 1800*time.Second, cfg.TokenTTL)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.TrustedProxies)
	assert.False(t, cfg.RequireChallenge)
	assert.False(t, cfg.AtomicProvisioning)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TIPGATE_JWT_SECRET", "s3cret")
	t.Setenv("TIPGATE_STORE", "sqlite")
	t.Setenv("TIPGATE_RATE_LIMIT", "20")
	t.Setenv("TIPGATE_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TIPGATE_REQUIRE_CHALLENGE", "true")
	t.Setenv("TIPGATE_LOG_LEVEL", "debug")
	t.Setenv("TIPGATE_TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 20, cfg.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.RequireChallenge)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TIPGATE_JWT_SECRET", "")
	_, err := Load()
	assert.ErrorContains(t, err, "TIPGATE_JWT_SECRET")

	t.Setenv("TIPGATE_JWT_SECRET", "s3cret")
	t.Setenv("TIPGATE_STORE", "dynamo")
	_, err = Load()
	assert.ErrorContains(t, err, "dynamo")

	t.Setenv("TIPGATE_STORE", "memory")
	t.Setenv("TIPGATE_RATE_WINDOW", "soon")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("TIPGATE_RATE_WINDOW", "60s")
	t.Setenv("TIPGATE_TRUSTED_PROXIES", "not-an-ip")
	_, err = Load()
	assert.ErrorContains(t, err, "not-an-ip")

	t.Setenv("TIPGATE_TRUSTED_PROXIES", "")
	t.Setenv("TIPGATE_CORS_ORIGINS", "tips.example")
	_, err = Load()
	assert.ErrorContains(t, err, "tips.example")
}
