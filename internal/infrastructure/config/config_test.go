package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv 清空會影響設定的無前綴環境變數
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "LOG_FILE", "DATABASE_URL", "REDIS_ADDR",
		"CACHE_ENABLED", "RATE_LIMIT_ENABLED", "DEDUP_WINDOW",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Category.FetchTimeout)
	assert.Equal(t, 62, cfg.Shopping.MaxSpanDays)
	assert.Equal(t, time.Second, cfg.DedupWindow)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "logs/app.log", cfg.LogFile)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("APP_DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/recipes?sslmode=disable")
	t.Setenv("APP_CATEGORY_DICTIONARY_PATH", "/etc/recipes/categories.yaml")
	t.Setenv("APP_SHOPPING_MAX_SPAN_DAYS", "14")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/recipes?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, "/etc/recipes/categories.yaml", cfg.Category.DictionaryPath)
	assert.Equal(t, 14, cfg.Shopping.MaxSpanDays)
}

func TestLoadConfigFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	data := []byte(`
server:
  port: 7070
database:
  driver: sqlite
  dsn: "file:recipes.db"
cache:
  enabled: false
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:recipes.db", cfg.Database.DSN)
	assert.False(t, cfg.Cache.Enabled)

	// 環境變數優先於設定檔
	t.Setenv("APP_SERVER_PORT", "6060")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Server.Port)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown driver":       {"APP_DATABASE_DRIVER": "mysql"},
		"sql driver needs dsn": {"APP_DATABASE_DRIVER": "sqlite"},
		"unknown cache":        {"APP_CACHE_BACKEND": "memcached"},
		"empty cache":          {"APP_CACHE_MAX_SIZE": "0"},
		"zero port":            {"APP_SERVER_PORT": "0"},
		"zero span":            {"APP_SHOPPING_MAX_SPAN_DAYS": "0"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			isolateEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}
