package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, DefaultAdminPassword, cfg.BootstrapAdminPassword)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.UsesDefaultSecret())

	cfg.JWTSecret = "something-else"
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DASHBOARD_CONFIG", "")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_DSN", "user:pw@tcp(db:3306)/dash?parseTime=true")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MAX_LOGO_BYTES", "2048")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("WORKER_CONCURRENCY", "500")
	t.Setenv("ANALYTICS_TIMEZONE", "Europe/Berlin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.EqualValues(t, 2048, cfg.MaxLogoBytes)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 50, cfg.WorkerConcurrency)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadFromFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":7070"
jwt_secret: ${TEST_DASHBOARD_SECRET}
upload_dir: /srv/uploads
feed_cache_ttl: 1m
log_format: json
`), 0o600))

	t.Setenv("DASHBOARD_CONFIG", path)
	t.Setenv("TEST_DASHBOARD_SECRET", "from-env")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("UPLOAD_DIR", "/override")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "/override", cfg.UploadDir)
	assert.Equal(t, time.Minute, cfg.FeedCacheTTL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"bad duration": {"SESSION_TTL", "soon"},
		"bad bool":     {"COOKIE_SECURE", "maybe"},
		"bad int":      {"REDIS_DB", "zero"},
		"bad driver":   {"DB_DRIVER", "postgres"},
		"bad timezone": {"ANALYTICS_TIMEZONE", "Mars/Olympus"},
		"zero logo":    {"MAX_LOGO_BYTES", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("DASHBOARD_CONFIG", "")
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
