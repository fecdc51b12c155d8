// Package stream serves live counter values for a comparison as
// server-sent events.
package stream

import (
	"time"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

// EventType identifies a stream event.
type EventType string

const (
	EventSnapshot EventType = "snapshot"
	EventTick     EventType = "tick"
	EventEnd      EventType = "end"
)

// Event is a single SSE event emitted to the client.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Slug      string    `json:"slug"`
	Data      any       `json:"data,omitempty"`
}

// SnapshotData carries the record and the first sampled values.
type SnapshotData struct {
	Comparison domain.Comparison `json:"comparison"`
	A          float64           `json:"a"`
	B          float64           `json:"b"`
	IntervalMS int64             `json:"interval_ms"`
}

// TickData carries one frame of counter values.
type TickData struct {
	Seq int64   `json:"seq"`
	A   float64 `json:"a"`
	B   float64 `json:"b"`
}

// EndData says why the stream closed.
type EndData struct {
	Reason string `json:"reason"`
}
