package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pupuseria/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/pupuseria",
		"REDIS_URL":    "redis://localhost:6379/0",
		"PORT":         "",
		"APP_ENV":      "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "file://migrations", cfg.MigrationsPath)
	require.Equal(t, 7, cfg.SummaryDefaultDays)
	require.Equal(t, 2*time.Minute, cfg.ReportCacheTTL)
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoadRequiresDatabaseAndRedis(t *testing.T) {
	_, err := config.LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.Error(t, err)

	_, err = config.LoadForTests(map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/pupuseria",
		"REDIS_URL":    "",
	})
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":                "postgres://localhost:5432/pupuseria",
		"REDIS_URL":                   "redis://localhost:6379/0",
		"PORT":                        "9090",
		"REPORT_CACHE_TTL":            "30s",
		"REPORT_SUMMARY_DEFAULT_DAYS": "14",
		"CORS_ALLOWED_ORIGINS":        "https://caja.example.com, https://admin.example.com",
	})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, 30*time.Second, cfg.ReportCacheTTL)
	require.Equal(t, 14, cfg.SummaryDefaultDays)
	require.Equal(t, []string{"https://caja.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}
