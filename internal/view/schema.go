// Package view builds the compare page model emitted by the backend. The
// HTML template and the JSON endpoint both render from it; neither decides
// on its own what to show.
package view

import (
	"time"

	"github.com/salaryrace/salaryrace-go/internal/adwatch"
)

// Page is the model for one comparison page.
type Page struct {
	Version     string    `json:"page_schema_version"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	OGImage     string    `json:"og_image"`
	StreamURL   string    `json:"stream_url"`
	Currency    string    `json:"currency"`
	Leader      string    `json:"leader,omitempty"`
	Ratio       float64   `json:"ratio"`
	SampledAt   time.Time `json:"sampled_at"`
	Meta        []Meta    `json:"meta"`
	Counters    []Counter `json:"counters"`
	Ads         []AdSlot  `json:"ads"`
	Actions     []Action  `json:"actions"`
}

// Meta is a <meta> tag. Property tags (og:*) and name tags (twitter:*) are
// kept apart because crawlers read them from different attributes.
type Meta struct {
	Property string `json:"property,omitempty"`
	Name     string `json:"name,omitempty"`
	Content  string `json:"content"`
}

// Counter is one side of the race.
type Counter struct {
	Side          string  `json:"side"`
	Name          string  `json:"name"`
	AvatarURL     string  `json:"avatar_url"`
	Annual        float64 `json:"annual"`
	AnnualDisplay string  `json:"annual_display"`
	PerSec        float64 `json:"per_sec"`
	PerSecDisplay string  `json:"per_sec_display"`
	Initial       float64 `json:"initial"`
	Leading       bool    `json:"leading"`
}

// AdSlot is an ad placement as rendered on the page.
type AdSlot struct {
	Name        string         `json:"name"`
	Network     string         `json:"network"`
	ContainerID string         `json:"container_id"`
	ScriptURL   string         `json:"script_url,omitempty"`
	ClientID    string         `json:"client_id,omitempty"`
	SlotID      string         `json:"slot_id,omitempty"`
	Status      adwatch.Status `json:"status"`
	Fallback    string         `json:"fallback"`
	GraceMillis int64          `json:"grace_ms"`
	// RefreshMillis is zero when the slot is never reloaded.
	RefreshMillis int64 `json:"refresh_ms,omitempty"`
}

// ActionType classifies a page control.
type ActionType string

const (
	ActionPause  ActionType = "pause"
	ActionReplay ActionType = "replay"
	ActionShare  ActionType = "share"
	ActionCreate ActionType = "create"
)

// Action is a user-triggerable control on the page.
type Action struct {
	Type  ActionType `json:"type"`
	Label string     `json:"label"`
	Href  string     `json:"href,omitempty"`
}
