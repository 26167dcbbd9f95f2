package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "unimarket")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "APP_NAME")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_TTL", "")
	t.Setenv("JWT_ACCESS_EXPIRES_MINUTES", "")
	t.Setenv("APP_BACKENDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 600*time.Second, cfg.Cache.DefaultTTL)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessExpiresIn)
	assert.Equal(t, 20, cfg.Recommendation.TopN)
	assert.True(t, cfg.App.Enabled(BackendMarket))
	assert.True(t, cfg.App.Enabled(BackendCollab))
}

func TestLoad_Backends(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_BACKENDS", " Market , ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"market"}, cfg.App.Backends)
	assert.True(t, cfg.App.Enabled(BackendMarket))
	assert.False(t, cfg.App.Enabled(BackendCollab))
}

func TestLoad_WSOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("WS_ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.App.WSOrigins)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		DBHost:     " db.internal ",
		DBPort:     "5432",
		DBUser:     "market",
		DBPassword: "it's a secret",
		DBName:     "unimarket",
	}

	assert.Equal(t,
		`host=db.internal port=5432 user=market password='it\'s a secret' dbname=unimarket sslmode=disable application_name=unimarket`,
		cfg.DSN("unimarket"),
	)

	cfg.DBSSLMode = "require"
	assert.NotContains(t, cfg.DSN(""), "application_name")
	assert.Contains(t, cfg.DSN(""), "sslmode=require")
}

func TestLoad_SlowQueryThreshold(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_SLOW_QUERY_MS", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.SlowQuery)

	t.Setenv("DB_SLOW_QUERY_MS", "120")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 120*time.Millisecond, cfg.Database.SlowQuery)
}
