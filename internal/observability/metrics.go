package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds OTel metric instruments for salaryrace. A nil *Metrics
// records nothing.
type Metrics struct {
	ComparisonsCreated metric.Int64Counter
	CreateLatency      metric.Float64Histogram
	OGRenders          metric.Int64Counter
	AnalyticsEvents    metric.Int64Counter
	StreamSessions     metric.Int64UpDownCounter
}

// NewMetrics creates the salaryrace metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("salaryrace")

	created, err := meter.Int64Counter("salaryrace.comparisons.created",
		metric.WithDescription("Number of comparisons created"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("salaryrace.comparisons.create_seconds",
		metric.WithDescription("Time to validate and store a comparison"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	ogRenders, err := meter.Int64Counter("salaryrace.og.renders",
		metric.WithDescription("Number of OG images rendered"),
	)
	if err != nil {
		return nil, err
	}

	events, err := meter.Int64Counter("salaryrace.analytics.events",
		metric.WithDescription("Analytics events received, by type"),
	)
	if err != nil {
		return nil, err
	}

	streams, err := meter.Int64UpDownCounter("salaryrace.stream.sessions",
		metric.WithDescription("Open counter streams"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ComparisonsCreated: created,
		CreateLatency:      latency,
		OGRenders:          ogRenders,
		AnalyticsEvents:    events,
		StreamSessions:     streams,
	}, nil
}

// RecordComparisonCreated records a stored comparison and how long it took.
func (m *Metrics) RecordComparisonCreated(ctx context.Context, currency string, d time.Duration) {
	if m == nil {
		return
	}
	m.ComparisonsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("currency", currency)))
	m.CreateLatency.Record(ctx, d.Seconds())
}

// RecordOGRender records a rendered preview image.
func (m *Metrics) RecordOGRender(ctx context.Context) {
	if m == nil {
		return
	}
	m.OGRenders.Add(ctx, 1)
}

// RecordAnalyticsEvent records a received analytics event.
func (m *Metrics) RecordAnalyticsEvent(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.AnalyticsEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("type", eventType)))
}

// StreamOpened and StreamClosed track open counter streams.
func (m *Metrics) StreamOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.StreamSessions.Add(ctx, 1)
}

func (m *Metrics) StreamClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.StreamSessions.Add(ctx, -1)
}
