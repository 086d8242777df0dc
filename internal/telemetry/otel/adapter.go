package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"password-recovery/internal/telemetry"
)

const instrumentationName = "password-recovery/telemetry"

// recordEmitter is the part of otellog.Logger the event emitter uses.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via provider.
// A nil provider gives a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &logEmitter{logger: provider.Logger(instrumentationName)}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.Event) error { return nil }

type logEmitter struct {
	logger recordEmitter
}

// Emit converts event to a log record: type, outcome and ids become attributes, metadata keys are prefixed "meta.".
func (e *logEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	var rec otellog.Record
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetBody(otellog.StringValue(event.Type))
	rec.SetSeverity(severityOf(event))

	attrs := []otellog.KeyValue{
		otellog.String("event_type", event.Type),
		otellog.String("outcome", event.Outcome),
	}
	if event.UserID != "" {
		attrs = append(attrs, otellog.String("user_id", event.UserID))
	}
	if event.Phone != "" {
		attrs = append(attrs, otellog.String("phone", event.Phone))
	}
	if event.Source != "" {
		attrs = append(attrs, otellog.String("source", event.Source))
	}
	for k, v := range event.Metadata {
		attrs = append(attrs, otellog.String("meta."+k, v))
	}
	rec.AddAttributes(attrs...)
	e.logger.Emit(ctx, rec)
	return nil
}

func severityOf(event *telemetry.Event) otellog.Severity {
	switch event.Outcome {
	case telemetry.OutcomeOK:
		return otellog.SeverityInfo
	case telemetry.OutcomeError, telemetry.OutcomeDelivery:
		return otellog.SeverityError
	default:
		return otellog.SeverityWarn
	}
}
