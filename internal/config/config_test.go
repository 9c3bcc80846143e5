package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATABASE_URL", "REDIS_ADDR", "LOCK_TTL", "LOG_LEVEL", "DEV_MODE", "DEFAULT_TENANT"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "demo", cfg.DefaultTenant)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://tb:tb@localhost:5432/tablebook?sslmode=disable")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LOCK_TTL", "750ms")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("DEFAULT_TENANT", "casa-lola")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 750*time.Millisecond, cfg.LockTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "casa-lola", cfg.DefaultTenant)
}

func TestFromEnv_RejectsBadLockTTL(t *testing.T) {
	t.Setenv("LOCK_TTL", "soon")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "LOCK_TTL")
}
