package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "/nonexistent/.env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8093, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 100, cfg.RateLimitRPS)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 100, cfg.AlertHistorySize)
	assert.Equal(t, "/sys/class/drm", cfg.GPUSysfsRoot)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV_FILE", "/nonexistent/.env")
	t.Setenv("PORT", "9000")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("API_KEY", "secret")
	t.Setenv("TICK_INTERVAL_SECONDS", "5")
	t.Setenv("ALERT_HISTORY_SIZE", "250")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ALLOWED_SERVICES", "nginx,redis")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 250, cfg.AlertHistorySize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, []string{"nginx", "redis"}, cfg.AllowedServices)
}

func TestLoadJWTSecretFallsBackToAPIKey(t *testing.T) {
	t.Setenv("ENV_FILE", "/nonexistent/.env")
	t.Setenv("API_KEY", "shared-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "shared-key", cfg.JWTSecret)
}

func TestLoadInvalidTickInterval(t *testing.T) {
	t.Setenv("ENV_FILE", "/nonexistent/.env")
	t.Setenv("TICK_INTERVAL_SECONDS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick interval")
}

func TestLoadInvalidAlertHistorySize(t *testing.T) {
	t.Setenv("ENV_FILE", "/nonexistent/.env")
	t.Setenv("ALERT_HISTORY_SIZE", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alert history size")
}

func TestAddr(t *testing.T) {
	cfg := &Config{Host: "0.0.0.0", Port: 8093}
	assert.Equal(t, "0.0.0.0:8093", cfg.Addr())
}

func TestAuthEnabled(t *testing.T) {
	assert.False(t, (&Config{}).AuthEnabled())
	assert.True(t, (&Config{APIKey: "k"}).AuthEnabled())
}
