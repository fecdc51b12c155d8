// Command api runs the salaryrace HTTP server: JSON API, live counter stream,
// share pages and OG images.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/salaryrace/salaryrace-go/internal/analytics"
	"github.com/salaryrace/salaryrace-go/internal/api"
	"github.com/salaryrace/salaryrace-go/internal/compare"
	"github.com/salaryrace/salaryrace-go/internal/config"
	"github.com/salaryrace/salaryrace-go/internal/frame"
	"github.com/salaryrace/salaryrace-go/internal/observability"
	"github.com/salaryrace/salaryrace-go/internal/store"
	"github.com/salaryrace/salaryrace-go/internal/stream"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	shutdownTracer, err := observability.InitTracer(ctx, "salaryrace-api", cfg.OTelEnabled)
	if err != nil {
		logger.Error("otel init failed", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.AutoMigrate {
		n, err := st.Migrate(ctx)
		if err != nil {
			return err
		}
		logger.Info("database migrated", "path", st.Path(), "applied", n)
	}

	slots, err := cfg.Slots()
	if err != nil {
		return err
	}

	var verifier api.TokenVerifier
	oidcCfg := api.OIDCConfig{IssuerURL: cfg.OIDCIssuer, Audience: cfg.OIDCAudience}
	if oidcCfg.Enabled() {
		v, err := api.NewOIDCVerifier(ctx, oidcCfg)
		if err != nil {
			return err
		}
		verifier = v
	}

	svc := compare.NewService(st,
		compare.WithDefaultCurrency(cfg.DefaultCurrency),
		compare.WithMetrics(metrics),
		compare.WithLogger(logger),
	)
	events := analytics.NewLog(cfg.AnalyticsCap, logger, metrics)

	srv, err := api.New(svc, events, api.Options{
		CORSOrigins:         cfg.CORSOrigins,
		BaseURL:             cfg.BaseURL,
		TrustProxy:          cfg.TrustProxy,
		DefaultCurrency:     cfg.DefaultCurrency,
		AdminToken:          cfg.AdminToken,
		Verifier:            verifier,
		Slots:               slots,
		AdGrace:             cfg.AdGrace,
		Scheduler:           frame.NewScheduler(frame.RealClock{}),
		Stream:              stream.Config{Interval: cfg.FrameInterval, MaxDuration: cfg.StreamMaxDuration},
		Metrics:             metrics,
		RatePerMinute:       cfg.RatePerMinute,
		CreateBudgetPerHour: cfg.CreateBudgetPerHour,
	})
	if err != nil {
		return err
	}

	var handler http.Handler = srv
	if cfg.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "salaryrace-api")
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting API server",
			"addr", httpSrv.Addr,
			"admin_enabled", cfg.AdminConfigured(),
			"oidc_enabled", oidcCfg.Enabled(),
			"ad_slots", len(slots),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down API server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
