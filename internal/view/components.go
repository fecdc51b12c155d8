package view

import (
	"fmt"
	"time"

	"github.com/salaryrace/salaryrace-go/internal/ads"
	"github.com/salaryrace/salaryrace-go/internal/adwatch"
	"github.com/salaryrace/salaryrace-go/internal/avatar"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/money"
	"github.com/salaryrace/salaryrace-go/internal/og"
)

func description(c domain.Comparison) string {
	return fmt.Sprintf("%s earns %s, %s earns %s. Watch both salaries grow live.",
		c.NameA, og.FormatPerSec(c.PerSecA), c.NameB, og.FormatPerSec(c.PerSecB))
}

// meta builds the Open Graph and Twitter card tags.
func meta(p Page) []Meta {
	return []Meta{
		{Property: "og:type", Content: "website"},
		{Property: "og:title", Content: p.Title},
		{Property: "og:description", Content: p.Description},
		{Property: "og:url", Content: p.URL},
		{Property: "og:image", Content: p.OGImage},
		{Property: "og:image:width", Content: fmt.Sprint(og.Width)},
		{Property: "og:image:height", Content: fmt.Sprint(og.Height)},
		{Name: "twitter:card", Content: "summary_large_image"},
		{Name: "twitter:title", Content: p.Title},
		{Name: "twitter:description", Content: p.Description},
		{Name: "twitter:image", Content: p.OGImage},
	}
}

func counterFor(side, name string, annual, perSec, initial float64, c domain.Comparison) Counter {
	return Counter{
		Side:          side,
		Name:          name,
		AvatarURL:     avatar.DiceBearURL(name, avatar.Options{}),
		Annual:        annual,
		AnnualDisplay: money.Format(annual, c.Currency),
		PerSec:        perSec,
		PerSecDisplay: og.FormatPerSec(perSec),
		Initial:       initial,
		Leading:       c.Leader() == side,
	}
}

// adSlot starts configured slots as pending; the client-side monitor
// decides whether they become visible or blocked.
func adSlot(s ads.Slot, grace time.Duration) AdSlot {
	if grace <= 0 {
		grace = adwatch.DefaultGrace
	}
	status := adwatch.StatusPending
	if !s.Configured() {
		status = adwatch.StatusUnavailable
	}
	var refresh int64
	if every, ok := s.Refresh(); ok {
		refresh = every.Milliseconds()
	}
	return AdSlot{
		Name:          s.Name,
		Network:       string(s.Network),
		ContainerID:   s.ContainerID(),
		ScriptURL:     s.ScriptURL(),
		ClientID:      s.ClientID,
		SlotID:        s.SlotID,
		Status:        status,
		Fallback:      ads.FallbackText,
		GraceMillis:   grace.Milliseconds(),
		RefreshMillis: refresh,
	}
}
