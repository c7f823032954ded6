package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the server instruments. A nil *Metrics records nothing.
type Metrics struct {
	requests    metric.Int64Counter
	duration    metric.Float64Histogram
	connections metric.Int64UpDownCounter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Requests handled, by method and status"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time spent in the middleware pipeline"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	connections, err := meter.Int64UpDownCounter("http.server.active_connections",
		metric.WithDescription("Connections currently being served"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requests:    requests,
		duration:    duration,
		connections: connections,
	}, nil
}

func (m *Metrics) RecordRequest(ctx context.Context, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) ConnectionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.connections.Add(ctx, 1)
}

func (m *Metrics) ConnectionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.connections.Add(ctx, -1)
}
