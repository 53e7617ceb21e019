package infra

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverFile, cfg.StoreDriver)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Remote.BaseURL)
	assert.Equal(t, "/predict/initial", cfg.Remote.InitialPath)
	assert.Equal(t, 60*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 500, cfg.MaxPromptLength)
	assert.Equal(t, 0, cfg.HistoryLimit)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("HISTORY_LIMIT", "10")
	t.Setenv("USE_DUMMY_DATA", "true")
	t.Setenv("REMOTE_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.True(t, cfg.Remote.UseDummyData)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigRequiresDriverSettings(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_URL", "")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "REDIS_URL")

	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORE_DRIVER", "sqlite")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadConfigRejectsUnknownTheme(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DEFAULT_THEME", "sepia")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DEFAULT_THEME")
}
