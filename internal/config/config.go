// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/salaryrace/salaryrace-go/internal/ads"
	"github.com/salaryrace/salaryrace-go/internal/money"
)

// Config holds all application configuration.
type Config struct {
	// HTTP server settings.
	Port        string
	BaseURL     string
	CORSOrigins []string
	TrustProxy  bool

	// Storage.
	DatabasePath string
	AutoMigrate  bool

	// Observability.
	LogLevel    string
	OTelEnabled bool

	// Admin access to the analytics summary.
	AdminToken   string
	OIDCIssuer   string
	OIDCAudience string

	DefaultCurrency     string
	AnalyticsCap        int
	RatePerMinute       int
	CreateBudgetPerHour int
	FrameInterval       time.Duration
	StreamMaxDuration   time.Duration

	// Ad slots. AdsFile, when set, replaces the individual ids.
	AdSenseClient   string
	AdSenseSlot     string
	CarbonServe     string
	CarbonPlacement string
	AdsFile         string
	AdGrace         time.Duration
	CarbonRefresh   time.Duration
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment win over the file.
func Load(dotenvPaths ...string) (Config, error) {
	if len(dotenvPaths) == 0 {
		dotenvPaths = []string{".env"}
	}
	for _, p := range dotenvPaths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from environment variables with sensible defaults.
func LoadFromEnv() (Config, error) {
	var errs []error
	cfg := Config{
		Port:            envOr("SALARYRACE_PORT", "8080"),
		BaseURL:         strings.TrimRight(os.Getenv("SALARYRACE_BASE_URL"), "/"),
		CORSOrigins:     parseCORSOrigins(os.Getenv("SALARYRACE_CORS_ORIGINS")),
		DatabasePath:    envOr("SALARYRACE_DATABASE_PATH", "salaryrace.db"),
		LogLevel:        envOr("SALARYRACE_LOG_LEVEL", "info"),
		AdminToken:      os.Getenv("SALARYRACE_ADMIN_TOKEN"),
		OIDCIssuer:      os.Getenv("SALARYRACE_OIDC_ISSUER"),
		OIDCAudience:    os.Getenv("SALARYRACE_OIDC_AUDIENCE"),
		AdSenseClient:   os.Getenv("SALARYRACE_ADSENSE_CLIENT"),
		AdSenseSlot:     os.Getenv("SALARYRACE_ADSENSE_SLOT"),
		CarbonServe:     os.Getenv("SALARYRACE_CARBON_SERVE"),
		CarbonPlacement: os.Getenv("SALARYRACE_CARBON_PLACEMENT"),
		AdsFile:         os.Getenv("SALARYRACE_ADS_FILE"),
	}

	cfg.AutoMigrate = envBool("SALARYRACE_AUTO_MIGRATE", true, &errs)
	cfg.OTelEnabled = envBool("SALARYRACE_OTEL_ENABLED", false, &errs)
	cfg.TrustProxy = envBool("SALARYRACE_TRUST_PROXY", false, &errs)
	cfg.AnalyticsCap = envInt("SALARYRACE_ANALYTICS_CAP", 200, &errs)
	cfg.RatePerMinute = envInt("SALARYRACE_RATE_PER_MINUTE", 30, &errs)
	cfg.CreateBudgetPerHour = envInt("SALARYRACE_CREATE_BUDGET_PER_HOUR", 20, &errs)
	cfg.FrameInterval = envDuration("SALARYRACE_FRAME_INTERVAL", 100*time.Millisecond, &errs)
	cfg.StreamMaxDuration = envDuration("SALARYRACE_STREAM_MAX", 10*time.Minute, &errs)
	cfg.AdGrace = envDuration("SALARYRACE_AD_GRACE", 1200*time.Millisecond, &errs)
	cfg.CarbonRefresh = envDuration("SALARYRACE_CARBON_REFRESH", 0, &errs)

	currency, err := money.Normalize(os.Getenv("SALARYRACE_DEFAULT_CURRENCY"))
	if err != nil {
		errs = append(errs, fmt.Errorf("config: invalid SALARYRACE_DEFAULT_CURRENCY: %w", err))
	}
	cfg.DefaultCurrency = currency

	if cfg.AnalyticsCap <= 0 {
		errs = append(errs, fmt.Errorf("config: SALARYRACE_ANALYTICS_CAP must be positive, got %d", cfg.AnalyticsCap))
	}
	if cfg.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: SALARYRACE_FRAME_INTERVAL must be positive"))
	}
	if cfg.CarbonRefresh < 0 {
		errs = append(errs, fmt.Errorf("config: SALARYRACE_CARBON_REFRESH must not be negative"))
	}
	if (cfg.OIDCIssuer == "") != (cfg.OIDCAudience == "") {
		errs = append(errs, fmt.Errorf("config: SALARYRACE_OIDC_ISSUER and SALARYRACE_OIDC_AUDIENCE must be set together"))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// AdminConfigured reports whether any admin credential is set.
func (c Config) AdminConfigured() bool {
	return c.AdminToken != "" || c.OIDCIssuer != ""
}

// Slots returns the configured ad slots: the YAML file when AdsFile is set,
// otherwise one AdSense and one Carbon slot from the individual ids.
func (c Config) Slots() ([]ads.Slot, error) {
	if c.AdsFile != "" {
		return ads.LoadSlots(c.AdsFile)
	}
	carbon := ads.Carbon(c.CarbonServe, c.CarbonPlacement)
	carbon.RefreshInterval = c.CarbonRefresh
	return []ads.Slot{
		ads.AdSense(c.AdSenseClient, c.AdSenseSlot),
		carbon,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("config: invalid %s %q (must be a boolean)", key, v))
		return fallback
	}
	return b
}

func envInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("config: invalid %s %q (must be an integer)", key, v))
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("config: invalid %s %q (must be a duration like 100ms)", key, v))
		return fallback
	}
	return d
}

func parseCORSOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
