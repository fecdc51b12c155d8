package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/salaryrace/salaryrace-go/internal/counter"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/frame"
	"github.com/salaryrace/salaryrace-go/internal/observability"
)

// Source looks up the comparison to stream.
type Source interface {
	Get(ctx context.Context, slug string) (domain.Comparison, error)
}

// Config controls SSE stream behavior.
type Config struct {
	Interval    time.Duration
	MaxDuration time.Duration
	Metrics     *observability.Metrics
	// OnLookupError writes the response when the comparison cannot be
	// loaded. The default sends a plain 500.
	OnLookupError func(w http.ResponseWriter, r *http.Request, err error)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    100 * time.Millisecond,
		MaxDuration: 10 * time.Minute,
	}
}

// Handler serves SSE counter frames for the comparison named by the
// {slug} path value. Frames come from sched; the stream ends when the client
// goes away or after MaxDuration.
func Handler(src Source, sched *frame.Scheduler, cfg Config) http.HandlerFunc {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultConfig().MaxDuration
	}
	return func(w http.ResponseWriter, r *http.Request) {
		slug := r.PathValue("slug")
		if slug == "" {
			http.Error(w, "slug required", http.StatusBadRequest)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		c, err := src.Get(r.Context(), slug)
		if err != nil {
			if cfg.OnLookupError != nil {
				cfg.OnLookupError(w, r, err)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		ctx := r.Context()
		cfg.Metrics.StreamOpened(ctx)
		defer cfg.Metrics.StreamClosed(ctx)

		clock := sched.Clock()
		now := clock.Now()
		race := counter.NewRace(c, now)
		first := race.Sample(now)
		writeSSE(w, flusher, Event{
			Type:      EventSnapshot,
			Timestamp: now.UTC(),
			Slug:      slug,
			Data: SnapshotData{
				Comparison: c,
				A:          first.A,
				B:          first.B,
				IntervalMS: cfg.Interval.Milliseconds(),
			},
		})

		deadline := clock.After(cfg.MaxDuration)
		var seq int64
		task := sched.Every(ctx, cfg.Interval, func(now time.Time) {
			seq++
			v := race.Sample(now)
			writeSSE(w, flusher, Event{
				Type:      EventTick,
				Timestamp: now.UTC(),
				Slug:      slug,
				Data:      TickData{Seq: seq, A: v.A, B: v.B},
			})
		})

		select {
		case <-ctx.Done():
			task.Cancel()
		case <-deadline:
			// The task must be stopped before this goroutine writes again.
			task.Cancel()
			writeSSE(w, flusher, Event{
				Type:      EventEnd,
				Timestamp: clock.Now().UTC(),
				Slug:      slug,
				Data:      EndData{Reason: "max-duration"},
			})
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	flusher.Flush()
}
