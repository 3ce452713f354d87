package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/agencyos/backend/internal/domain/activity"
	"github.com/agencyos/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys shared by the service metrics
var (
	AttrModule     = attribute.Key("module")
	AttrChangeKind = attribute.Key("change.kind")
	AttrToStatus   = attribute.Key("status.to")

	AttrHTTPMethod     = attribute.Key("http.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.status_code")
)

// RecordMetrics counts record changes. It subscribes to the event bus.
type RecordMetrics struct {
	changes metric.Int64Counter
}

// NewRecordMetrics creates the instruments on meter
func NewRecordMetrics(meter metric.Meter) (*RecordMetrics, error) {
	changes, err := meter.Int64Counter("agency.record.changes",
		metric.WithDescription("Record creates, updates, transitions and resets"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter agency.record.changes: %w", err)
	}
	return &RecordMetrics{changes: changes}, nil
}

// EventTypes returns nil: every event is counted
func (m *RecordMetrics) EventTypes() []string { return nil }

// Handle counts one change
func (m *RecordMetrics) Handle(ctx context.Context, ev shared.DomainEvent) error {
	change, ok := ev.(*activity.RecordChanged)
	if !ok {
		return nil
	}
	attrs := []attribute.KeyValue{
		AttrModule.String(change.Module),
		AttrChangeKind.String(string(change.Kind())),
	}
	if change.ToStatus != "" {
		attrs = append(attrs, AttrToStatus.String(change.ToStatus))
	}
	m.changes.Add(ctx, 1, metric.WithAttributes(attrs...))
	return nil
}

// HTTPMetrics records request counts and latency
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPMetrics creates the instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter http.server.requests: %w", err)
	}
	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(HTTPDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram http.server.duration: %w", err)
	}
	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// Observe records one finished request
func (m *HTTPMetrics) Observe(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.Int(status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
