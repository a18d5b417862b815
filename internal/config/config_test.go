package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("requires database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "secret")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("requires jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/selfreg")
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("applies defaults and overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/selfreg")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("HTTP_READ_TIMEOUT", "30")
		t.Setenv("ACCESS_TOKEN_TTL", "2h")
		t.Setenv("BULK_APPROVE_CONCURRENCY", "0")
		t.Setenv("AUTO_MIGRATE", "false")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://portal.example, https://admin.example")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "INR", cfg.DefaultCurrency)
		assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 2*time.Hour, cfg.AccessTokenTTL)
		assert.Equal(t, 1, cfg.BulkApproveConcurrency)
		assert.Equal(t, 30, cfg.PublicRateLimit)
		assert.False(t, cfg.AutoMigrate)
		assert.Equal(t, []string{"https://portal.example", "https://admin.example"}, cfg.CORSAllowedOrigins)
	})
}
