package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")
	t.Setenv("REMINDER_DAYS", "")
	t.Setenv("PLAN_CACHE_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.JWTSecret)
	assert.Equal(t, cfg.JWTSecret, cfg.JWTRefreshSecret)
	assert.Equal(t, 7, cfg.ReminderDays)
	assert.Equal(t, 5*time.Minute, cfg.PlanCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	t.Setenv("REMINDER_DAYS", "3")
	t.Setenv("PLAN_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "access", cfg.JWTSecret)
	assert.Equal(t, "refresh", cfg.JWTRefreshSecret)
	assert.Equal(t, 3, cfg.ReminderDays)
	assert.Equal(t, 30*time.Second, cfg.PlanCacheTTL)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	t.Setenv("REMINDER_DAYS", "soon")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "REMINDER_DAYS")
}
