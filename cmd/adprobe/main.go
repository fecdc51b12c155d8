// Command adprobe loads a comparison page in a headless browser and reports
// whether each ad slot rendered or was blocked.
//
// Usage:
//
//	adprobe -url http://localhost:8080/compare/alice-vs-bob-Ab12Cd
//	adprobe -url ... -slots ads.yaml -report=false
//	adprobe -url ... -remote ws://127.0.0.1:9222/devtools/browser/...
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"golang.org/x/sync/errgroup"

	"github.com/salaryrace/salaryrace-go/internal/ads"
	"github.com/salaryrace/salaryrace-go/internal/adwatch"
	"github.com/salaryrace/salaryrace-go/internal/adwatch/rodpage"
	"github.com/salaryrace/salaryrace-go/internal/analytics"
	"github.com/salaryrace/salaryrace-go/internal/config"
	"github.com/salaryrace/salaryrace-go/internal/frame"
	"github.com/salaryrace/salaryrace-go/internal/observability"
)

type options struct {
	pageURL   string
	slotsFile string
	remoteURL string
	observe   time.Duration
	grace     time.Duration
	report    bool
	logLevel  string
}

// result is one line of output per slot.
type result struct {
	Slot    string         `json:"slot"`
	Network string         `json:"network"`
	Status  adwatch.Status `json:"status"`
	Error   string         `json:"error,omitempty"`
}

func main() {
	var o options
	flag.StringVar(&o.pageURL, "url", "", "comparison page URL (required)")
	flag.StringVar(&o.slotsFile, "slots", "", "ad slots YAML file (default: from environment)")
	flag.StringVar(&o.remoteURL, "remote", "", "DevTools URL of a running browser (default: launch headless Chrome)")
	flag.DurationVar(&o.observe, "observe", 5*time.Second, "how long to keep watching after the grace period")
	flag.DurationVar(&o.grace, "grace", 0, "grace period before the first check (default: SALARYRACE_AD_GRACE)")
	flag.BoolVar(&o.report, "report", true, "send impression and block events to the page's server")
	flag.StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := observability.InitStderrLogger(o.logLevel)
	if o.pageURL == "" {
		fmt.Fprintln(os.Stderr, "usage: adprobe -url <comparison page URL> [flags]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o); err != nil {
		logger.Error("adprobe: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, o options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slots, err := loadSlots(cfg, o.slotsFile)
	if err != nil {
		return err
	}
	if o.grace <= 0 {
		o.grace = cfg.AdGrace
	}

	var reporter adwatch.Reporter = analytics.LogReporter{Log: analytics.NewLog(analytics.DefaultCapacity, logger, nil)}
	if o.report {
		origin, err := originOf(o.pageURL)
		if err != nil {
			return err
		}
		reporter = analytics.NewBeacon(origin, analytics.WithLogger(logger))
	}

	browser, cleanup, err := connect(o.remoteURL)
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("adprobe: open tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := page.Context(navCtx).Navigate(o.pageURL); err != nil {
		return fmt.Errorf("adprobe: navigate %s: %w", o.pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return fmt.Errorf("adprobe: wait load: %w", err)
	}

	monitor := &adwatch.Monitor{
		Document: rodpage.New(page),
		Reporter: reporter,
		Clock:    frame.RealClock{},
		Grace:    o.grace,
		Logger:   logger,
	}

	watchCtx, stopWatching := context.WithTimeout(ctx, o.grace+o.observe)
	defer stopWatching()

	results := make([]result, len(slots))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(watchCtx)
	for i, slot := range slots {
		g.Go(func() error {
			status, err := monitor.Watch(gctx, slot, func(s adwatch.Status) {
				logger.Debug("slot status", "slot", slot.Name, "status", s)
			})
			r := result{Slot: slot.Name, Network: string(slot.Network), Status: status}
			if err != nil {
				r.Error = err.Error()
			}
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func loadSlots(cfg config.Config, file string) ([]ads.Slot, error) {
	if file != "" {
		return ads.LoadSlots(file)
	}
	return cfg.Slots()
}

// connect attaches to a remote browser or launches a local headless one.
func connect(remoteURL string) (*rod.Browser, func(), error) {
	wsURL := remoteURL
	var l *launcher.Launcher
	if wsURL == "" {
		l = launcher.New().Headless(true).Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("adprobe: launch browser: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, nil, fmt.Errorf("adprobe: connect browser: %w", err)
	}
	return b, func() {
		_ = b.Close()
		if l != nil {
			l.Kill()
		}
	}, nil
}

func originOf(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("adprobe: invalid page URL %q", pageURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
