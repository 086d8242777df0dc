package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"password-recovery/internal/telemetry"
)

// MetricsEmitter counts recovery events by type and outcome.
type MetricsEmitter struct {
	events metric.Int64Counter
}

// NewMetricsEmitter registers the "password_reset.events" counter on mp.
func NewMetricsEmitter(mp metric.MeterProvider) (*MetricsEmitter, error) {
	meter := mp.Meter(instrumentationName)
	c, err := meter.Int64Counter(
		"password_reset.events",
		metric.WithDescription("Password recovery events by type and outcome"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}
	return &MetricsEmitter{events: c}, nil
}

// Emit implements telemetry.EventEmitter.
func (m *MetricsEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if m == nil || event == nil {
		return nil
	}
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", event.Type),
		attribute.String("outcome", event.Outcome),
	))
	return nil
}
