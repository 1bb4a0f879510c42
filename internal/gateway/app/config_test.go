package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "firegate", cfg.Issuer)
	require.Equal(t, 8*time.Hour, cfg.SessionTTL)
	require.Equal(t, 15*time.Minute, cfg.PasswordChangeTTL)
	require.Equal(t, "firegate_session", cfg.CookieName)
	require.True(t, cfg.CookieSecure)
	require.Equal(t, SessionBackendSQLite, cfg.SessionBackend)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, time.Hour, cfg.HousekeepingInterval)
	require.Equal(t, 24*time.Hour, cfg.KeyRotationInterval)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("FIREGATE_ISSUER", "firegate-test")
	t.Setenv("FIREGATE_SESSION_TTL", "30m")
	t.Setenv("FIREGATE_COOKIE_SECURE", "false")
	t.Setenv("FIREGATE_SESSION_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("FIREGATE_KEY_ROTATION_INTERVAL", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "firegate-test", cfg.Issuer)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.False(t, cfg.CookieSecure)
	require.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, 9090, cfg.Port)
	require.Zero(t, cfg.KeyRotationInterval)
	require.True(t, cfg.IsProduction())
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown backend", "FIREGATE_SESSION_BACKEND", "memcached"},
		{"zero session ttl", "FIREGATE_SESSION_TTL", "0s"},
		{"negative change ttl", "FIREGATE_PASSWORD_CHANGE_TTL", "-1m"},
		{"port out of range", "PORT", "70000"},
		{"negative key rotation", "FIREGATE_KEY_ROTATION_INTERVAL", "-1h"},
		{"malformed duration", "FIREGATE_SESSION_TTL", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}
