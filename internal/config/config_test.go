package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_MEDIA_BASE_URL", "")
	t.Setenv("CACHE_DRIVER", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("SESSION_REMEMBER_MAX_AGE_SECONDS", "")
	t.Setenv("GATE_REJECT_EXPIRED_TOKENS", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("GATE_STATIC_EXTENSIONS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, cfg.API.BaseURL, cfg.API.MediaBaseURL)
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL())
	assert.Equal(t, 2592000, cfg.Session.RememberMaxAgeSeconds)
	assert.True(t, cfg.Gate.RejectExpiredTokens)
	assert.Nil(t, cfg.Gate.StaticExtensions)
	assert.False(t, cfg.App.Production())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("API_MEDIA_BASE_URL", "https://cdn.example.com/")
	t.Setenv("CACHE_DRIVER", "Redis")
	t.Setenv("CACHE_TTL_SECONDS", "5")
	t.Setenv("GATE_STATIC_EXTENSIONS", ".png, .ico,,.svg")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, "https://cdn.example.com", cfg.API.MediaBaseURL)
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL())
	assert.Equal(t, []string{".png", ".ico", ".svg"}, cfg.Gate.StaticExtensions)
	assert.True(t, cfg.App.Production())
}

func TestLoadRejectsUnknownCacheDriver(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "memcached")

	_, err := Load()
	require.Error(t, err)
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
	assert.Equal(t, 3*time.Second, AppConfig{RequestTimeoutSeconds: 3}.RequestTimeout())
}
