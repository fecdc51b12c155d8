// Package analytics keeps a bounded in-memory log of client events and
// reports events to a running server.
package analytics

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/observability"
)

const (
	// DefaultCapacity is the number of events retained.
	DefaultCapacity = 200
	// DefaultLatest is the number of events returned by Summary.
	DefaultLatest = 50

	maxTypeLength = 64
)

// ErrMissingType is returned for events without a type.
var ErrMissingType = errors.New("analytics: missing event type")

// Event is a single recorded client event.
type Event struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	ReceivedAt time.Time      `json:"receivedAt"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// Summary is a view over the retained events.
type Summary struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
	Latest []Event        `json:"latest"`
}

// Log is a ring buffer of the most recent events. It is safe for
// concurrent use.
type Log struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool

	logger  *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewLog returns a Log retaining capacity events (DefaultCapacity if <= 0).
// logger and metrics may be nil.
func NewLog(capacity int, logger *slog.Logger, metrics *observability.Metrics) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		events:  make([]Event, capacity),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Record stores an event, evicting the oldest once the log is full.
func (l *Log) Record(ctx context.Context, typ string, payload map[string]any) (Event, error) {
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return Event{}, ErrMissingType
	}
	typ = truncate(typ, maxTypeLength)
	id, err := uuid.NewV7()
	if err != nil {
		return Event{}, err
	}
	ev := Event{ID: id.String(), Type: typ, ReceivedAt: l.now().UTC(), Payload: payload}

	l.mu.Lock()
	l.events[l.next] = ev
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "analytics event", "id", ev.ID, "type", ev.Type, "payload", payload)
	l.metrics.RecordAnalyticsEvent(ctx, ev.Type)
	return ev, nil
}

// Len returns the number of retained events.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.events)
	}
	return l.next
}

// Events returns the retained events, oldest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Log) snapshotLocked() []Event {
	if !l.full {
		return append([]Event(nil), l.events[:l.next]...)
	}
	out := make([]Event, 0, len(l.events))
	out = append(out, l.events[l.next:]...)
	return append(out, l.events[:l.next]...)
}

// Summary counts retained events by type and returns the latest n, newest
// first (DefaultLatest if n <= 0).
func (l *Log) Summary(n int) Summary {
	if n <= 0 {
		n = DefaultLatest
	}
	l.mu.Lock()
	events := l.snapshotLocked()
	l.mu.Unlock()

	s := Summary{Total: len(events), Counts: make(map[string]int)}
	for _, ev := range events {
		s.Counts[ev.Type]++
	}
	if n > len(events) {
		n = len(events)
	}
	s.Latest = make([]Event, 0, n)
	for i := len(events) - 1; i >= len(events)-n; i-- {
		s.Latest = append(s.Latest, events[i])
	}
	return s
}

// Types returns the distinct event types in the summary, sorted.
func (s Summary) Types() []string {
	types := make([]string, 0, len(s.Counts))
	for t := range s.Counts {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// LogReporter records reported events straight into a Log.
type LogReporter struct {
	Log *Log
}

func (r LogReporter) Report(ctx context.Context, typ domain.EventType, payload map[string]any) error {
	_, err := r.Log.Record(ctx, string(typ), payload)
	return err
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
