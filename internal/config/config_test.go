package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("DEALERDASH_DATABASE__HOST", "db.internal")
	t.Setenv("DEALERDASH_DATABASE__USER", "dealer")
	t.Setenv("DEALERDASH_DATABASE__PASSWORD", "s3cret")
	t.Setenv("DEALERDASH_DATABASE__NAME", "dealerdash")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, int32(0), cfg.Database.MinConns)
	assert.Equal(t, 30*time.Second, cfg.Database.MaxConnIdleTime)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, []string{"preview/dist", "core/dist", "public"}, cfg.Static.Dirs)
	assert.Equal(t, "dealer-dashboard", cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DEALERDASH_PRIMARY__ENV", "production")
	t.Setenv("DEALERDASH_SERVER__PORT", "8080")
	t.Setenv("DEALERDASH_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEALERDASH_DATABASE__MAX_CONNS", "25")
	t.Setenv("DEALERDASH_DATABASE__QUERY_TIMEOUT", "3s")
	t.Setenv("DEALERDASH_DATABASE__SSL_MODE", "disable")
	t.Setenv("DEALERDASH_STATIC__DIRS", "dist,public")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 3*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, []string{"dist", "public"}, cfg.Static.Dirs)
	assert.Equal(t, "production", cfg.Observability.Environment)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfigRejectsMissingDatabaseSettings(t *testing.T) {
	t.Setenv("DEALERDASH_DATABASE__HOST", "")
	t.Setenv("DEALERDASH_DATABASE__USER", "dealer")
	t.Setenv("DEALERDASH_DATABASE__PASSWORD", "s3cret")
	t.Setenv("DEALERDASH_DATABASE__NAME", "dealerdash")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Host")
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	for key, value := range map[string]string{
		"DEALERDASH_PRIMARY__ENV":                   "moon",
		"DEALERDASH_DATABASE__SSL_MODE":             "sometimes",
		"DEALERDASH_DATABASE__MIN_CONNS":            "50",
		"DEALERDASH_OBSERVABILITY__LOGGING__LEVEL":  "loud",
		"DEALERDASH_OBSERVABILITY__LOGGING__FORMAT": "xml",
	} {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestEnvKeyValue(t *testing.T) {
	key, value := envKeyValue("DEALERDASH_DATABASE__MAX_CONN_IDLE_TIME", "45s")
	assert.Equal(t, "database.max_conn_idle_time", key)
	assert.Equal(t, "45s", value)

	key, value = envKeyValue("DEALERDASH_STATIC__DIRS", "a, b")
	assert.Equal(t, "static.dirs", key)
	assert.Equal(t, []string{"a", "b"}, value)
}

func TestObservabilityLogLevel(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = ""

	cfg.Environment = "development"
	assert.Equal(t, "debug", cfg.GetLogLevel())

	cfg.Environment = "production"
	assert.Equal(t, "info", cfg.GetLogLevel())
}
