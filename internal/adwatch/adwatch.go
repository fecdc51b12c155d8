// Package adwatch decides whether an ad slot actually rendered and reports
// impressions and suspected ad blocking.
//
// The check is a heuristic: after a grace period the loader script, the ad
// element and a non-empty container must all be present. Afterwards every DOM
// mutation re-runs the check. A slot is reported blocked at most once.
package adwatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salaryrace/salaryrace-go/internal/ads"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/frame"
)

// DefaultGrace is how long a slot may take to render before it is checked.
const DefaultGrace = 1200 * time.Millisecond

// Status is the visible state of a slot.
type Status string

const (
	StatusUnavailable Status = "unavailable"
	StatusPending     Status = "pending"
	StatusVisible     Status = "visible"
	StatusBlocked     Status = "blocked"
)

// ShowFallback reports whether the fallback call-to-action replaces the ad.
func (s Status) ShowFallback() bool {
	return s == StatusUnavailable || s == StatusBlocked
}

// Reasons attached to ad-block-detected events.
const (
	ReasonScriptMissing      = "script-missing"
	ReasonAdMissing          = "ad-missing"
	ReasonContainerMissing   = "container-missing"
	ReasonContainerCollapsed = "container-collapsed"
)

// Box is the rendered size of an element.
type Box struct {
	Width, Height float64
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Document is the page an ad slot lives in.
type Document interface {
	// Has reports whether an element matches selector.
	Has(ctx context.Context, selector string) (bool, error)
	// Box returns the size of the first element matching selector.
	Box(ctx context.Context, selector string) (Box, bool, error)
	// Mutations signals DOM changes until ctx is done.
	Mutations(ctx context.Context) (<-chan struct{}, error)
}

// Reporter receives analytics events. Errors are logged and dropped.
type Reporter interface {
	Report(ctx context.Context, typ domain.EventType, payload map[string]any) error
}

// Monitor watches ad slots in a Document.
type Monitor struct {
	Document Document
	Reporter Reporter
	Clock    frame.Clock
	Grace    time.Duration
	Logger   *slog.Logger
}

// Watch follows slot until ctx is done, the mutation stream closes, or the
// slot is found blocked. onChange, if set, is called on every status change
// from the calling goroutine. Watch returns the last status.
func (m *Monitor) Watch(ctx context.Context, slot ads.Slot, onChange func(Status)) (Status, error) {
	status := StatusPending
	set := func(s Status) {
		status = s
		if onChange != nil {
			onChange(s)
		}
	}

	if !slot.Configured() {
		set(StatusUnavailable)
		return status, nil
	}
	set(StatusPending)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	select {
	case <-ctx.Done():
		return status, nil
	case <-m.clock().After(m.grace()):
	}

	mutations, err := m.Document.Mutations(ctx)
	if err != nil {
		return status, m.docErr(ctx, slot, "observe", err)
	}

	reason, err := m.check(ctx, slot)
	if err != nil {
		return status, m.docErr(ctx, slot, "check", err)
	}
	if reason != "" {
		m.report(ctx, domain.EventAdBlockDetected, slot, reason)
		set(StatusBlocked)
		return status, nil
	}
	m.report(ctx, domain.EventAdImpression, slot, "")
	set(StatusVisible)

	for {
		select {
		case <-ctx.Done():
			return status, nil
		case _, ok := <-mutations:
			if !ok {
				return status, nil
			}
			reason, err := m.check(ctx, slot)
			if err != nil {
				return status, m.docErr(ctx, slot, "recheck", err)
			}
			if reason != "" {
				m.report(ctx, domain.EventAdBlockDetected, slot, reason)
				set(StatusBlocked)
				return status, nil
			}
		}
	}
}

// check returns the first failing signal, or "" when the ad looks rendered.
func (m *Monitor) check(ctx context.Context, slot ads.Slot) (string, error) {
	ok, err := m.Document.Has(ctx, slot.ScriptSelector)
	if err != nil {
		return "", err
	}
	if !ok {
		return ReasonScriptMissing, nil
	}
	ok, err = m.Document.Has(ctx, slot.AdSelector)
	if err != nil {
		return "", err
	}
	if !ok {
		return ReasonAdMissing, nil
	}
	box, found, err := m.Document.Box(ctx, slot.ContainerSelector)
	if err != nil {
		return "", err
	}
	if !found {
		return ReasonContainerMissing, nil
	}
	if box.Empty() {
		return ReasonContainerCollapsed, nil
	}
	return "", nil
}

func (m *Monitor) report(ctx context.Context, typ domain.EventType, slot ads.Slot, reason string) {
	log := m.logger().With("slot", slot.Name, "network", slot.Network)
	if typ == domain.EventAdBlockDetected {
		log.Info("ad slot blocked", "reason", reason)
	} else {
		log.Debug("ad slot visible")
	}
	if m.Reporter == nil {
		return
	}
	payload := map[string]any{
		"slot":    slot.Name,
		"network": string(slot.Network),
	}
	if reason != "" {
		payload["reason"] = reason
	}
	if err := m.Reporter.Report(ctx, typ, payload); err != nil {
		log.Debug("analytics report failed", "event", typ, "error", err)
	}
}

// docErr hides errors caused by teardown.
func (m *Monitor) docErr(ctx context.Context, slot ads.Slot, op string, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("adwatch: %s %s: %w", op, slot.Name, err)
}

func (m *Monitor) clock() frame.Clock {
	if m.Clock == nil {
		return frame.RealClock{}
	}
	return m.Clock
}

func (m *Monitor) grace() time.Duration {
	if m.Grace <= 0 {
		return DefaultGrace
	}
	return m.Grace
}

func (m *Monitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}
