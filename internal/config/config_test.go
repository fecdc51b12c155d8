package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

var envKeys = []string{
	"SALARYRACE_PORT", "SALARYRACE_BASE_URL", "SALARYRACE_CORS_ORIGINS", "SALARYRACE_TRUST_PROXY",
	"SALARYRACE_DATABASE_PATH", "SALARYRACE_AUTO_MIGRATE", "SALARYRACE_LOG_LEVEL",
	"SALARYRACE_OTEL_ENABLED", "SALARYRACE_ADMIN_TOKEN", "SALARYRACE_OIDC_ISSUER",
	"SALARYRACE_OIDC_AUDIENCE", "SALARYRACE_DEFAULT_CURRENCY", "SALARYRACE_ANALYTICS_CAP",
	"SALARYRACE_RATE_PER_MINUTE", "SALARYRACE_CREATE_BUDGET_PER_HOUR", "SALARYRACE_FRAME_INTERVAL",
	"SALARYRACE_STREAM_MAX", "SALARYRACE_ADSENSE_CLIENT", "SALARYRACE_ADSENSE_SLOT",
	"SALARYRACE_CARBON_SERVE", "SALARYRACE_CARBON_PLACEMENT", "SALARYRACE_ADS_FILE",
	"SALARYRACE_AD_GRACE", "SALARYRACE_CARBON_REFRESH",
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "salaryrace.db", cfg.DatabasePath)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, domain.DefaultCurrency, cfg.DefaultCurrency)
	assert.Equal(t, 200, cfg.AnalyticsCap)
	assert.Equal(t, 30, cfg.RatePerMinute)
	assert.Equal(t, 20, cfg.CreateBudgetPerHour)
	assert.Equal(t, 100*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 10*time.Minute, cfg.StreamMaxDuration)
	assert.Equal(t, 1200*time.Millisecond, cfg.AdGrace)
	assert.False(t, cfg.AdminConfigured())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SALARYRACE_PORT", "9090")
	t.Setenv("SALARYRACE_BASE_URL", "https://salary.example/")
	t.Setenv("SALARYRACE_CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SALARYRACE_AUTO_MIGRATE", "false")
	t.Setenv("SALARYRACE_DEFAULT_CURRENCY", "usd")
	t.Setenv("SALARYRACE_FRAME_INTERVAL", "250ms")
	t.Setenv("SALARYRACE_ADMIN_TOKEN", "s3cret")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://salary.example", cfg.BaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.FrameInterval)
	assert.True(t, cfg.AdminConfigured())
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SALARYRACE_AUTO_MIGRATE", "maybe")
	t.Setenv("SALARYRACE_ANALYTICS_CAP", "lots")
	t.Setenv("SALARYRACE_STREAM_MAX", "forever")
	t.Setenv("SALARYRACE_DEFAULT_CURRENCY", "dollars")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid SALARYRACE_AUTO_MIGRATE")
	assert.Contains(t, err.Error(), "invalid SALARYRACE_ANALYTICS_CAP")
	assert.Contains(t, err.Error(), "invalid SALARYRACE_STREAM_MAX")
	assert.Contains(t, err.Error(), "invalid SALARYRACE_DEFAULT_CURRENCY")
}

func TestLoadFromEnv_OIDCPairRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("SALARYRACE_OIDC_ISSUER", "https://issuer.example")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be set together")
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SALARYRACE_PORT=7070\nSALARYRACE_LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("SALARYRACE_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestSlots(t *testing.T) {
	cfg := Config{AdSenseClient: "ca-pub-1", AdSenseSlot: "9"}
	slots, err := cfg.Slots()
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.True(t, slots[0].Configured())
	assert.False(t, slots[1].Configured())

	cfg.CarbonServe = "CEAI"
	cfg.CarbonRefresh = 30 * time.Second
	slots, err = cfg.Slots()
	require.NoError(t, err)
	every, ok := slots[1].Refresh()
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, every)

	path := filepath.Join(t.TempDir(), "ads.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slots:\n  - network: carbon\n    serve: S\n"), 0o600))
	cfg.AdsFile = path
	slots, err = cfg.Slots()
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "carbon", slots[0].Name)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		// Save the current value and restore it on cleanup, so the key is
		// absent during the test.
		orig, wasSet := os.LookupEnv(key)
		if wasSet {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}
