package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/salaryrace/salaryrace-go/internal/ads"
	"github.com/salaryrace/salaryrace-go/internal/counter"
	"github.com/salaryrace/salaryrace-go/internal/domain"
)

const schemaVersion = "v1"

// Options carries request-dependent inputs to Build.
type Options struct {
	// BaseURL is the absolute origin used for og:url and og:image.
	BaseURL string
	Slots   []ads.Slot
	Grace   time.Duration
	Now     time.Time
}

// Build constructs the page model for c with counters sampled at opts.Now.
func Build(c domain.Comparison, opts Options) Page {
	base := strings.TrimRight(opts.BaseURL, "/")
	values := counter.NewRace(c, opts.Now).Sample(opts.Now)

	p := Page{
		Version:     schemaVersion,
		Slug:        c.Slug,
		Title:       fmt.Sprintf("%s vs %s: salary race", c.NameA, c.NameB),
		Description: description(c),
		URL:         base + c.URL(),
		OGImage:     base + "/api/og/" + c.Slug,
		StreamURL:   "/api/compare/" + c.Slug + "/stream",
		Currency:    c.Currency,
		Leader:      c.Leader(),
		Ratio:       c.Ratio(),
		SampledAt:   values.At,
	}
	p.Meta = meta(p)
	p.Counters = []Counter{
		counterFor("A", c.NameA, c.AnnualA, c.PerSecA, values.A, c),
		counterFor("B", c.NameB, c.AnnualB, c.PerSecB, values.B, c),
	}
	for _, s := range opts.Slots {
		p.Ads = append(p.Ads, adSlot(s, opts.Grace))
	}
	p.Actions = []Action{
		{Type: ActionPause, Label: "Pause"},
		{Type: ActionReplay, Label: "Replay"},
		{Type: ActionShare, Label: "Share", Href: p.URL},
		{Type: ActionCreate, Label: "Create your own", Href: "/"},
	}
	return p
}
