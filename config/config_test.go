package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "murmur.db", cfg.DB.URL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.Redis.LikeTTL)
	assert.False(t, cfg.Auth.AllowHeader)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DATABASE_URL", "root:pw@tcp(127.0.0.1:3306)/murmur?parseTime=True")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "1h")
	t.Setenv("AUTH_ALLOW_HEADER", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LIKE_CACHE_TTL", "90s")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.AllowHeader)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Redis.LikeTTL)
	assert.Equal(t, "info", cfg.Log.Level, "empty value falls back to the default")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET": ""}},
		{"missing dsn", map[string]string{"DB_DRIVER": "mysql", "DATABASE_URL": "", "JWT_SECRET": "x"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle", "JWT_SECRET": "x"}},
		{"bad duration", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET": "x", "JWT_EXPIRES_IN": "7d"}},
		{"bad bool", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET": "x", "AUTH_ALLOW_HEADER": "maybe"}},
		{"bad int", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET": "x", "REDIS_DB": "zero"}},
		{"zero ttl", map[string]string{"DB_DRIVER": "sqlite", "JWT_SECRET": "x", "JWT_EXPIRES_IN": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
