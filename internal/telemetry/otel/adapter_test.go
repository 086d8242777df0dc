package otel

import (
	"context"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"password-recovery/internal/telemetry"
)

// recordCapture stores the last Record passed to Emit for assertion.
type recordCapture struct {
	rec otellog.Record
	n   int
}

func (r *recordCapture) Emit(ctx context.Context, rec otellog.Record) {
	r.rec = rec
	r.n++
}

func TestNewEventEmitter_NilProvider_ReturnsNoop(t *testing.T) {
	em := NewEventEmitter(nil)
	if err := em.Emit(context.Background(), &telemetry.Event{Type: telemetry.EventCodeRequested}); err != nil {
		t.Errorf("noop Emit: %v", err)
	}
}

func TestNewEventEmitter_RealProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()
	em := NewEventEmitter(provider)
	if err := em.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(ctx, nil): %v", err)
	}
	if err := em.Emit(context.Background(), &telemetry.Event{Type: telemetry.EventCodeRequested}); err != nil {
		t.Errorf("Emit: %v", err)
	}
}

func TestLogEmitter_AttributeMapping(t *testing.T) {
	cap := &recordCapture{}
	em := &logEmitter{logger: cap}
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	err := em.Emit(context.Background(), &telemetry.Event{
		Type:      telemetry.EventResetFailed,
		Outcome:   telemetry.OutcomeInvalidCode,
		UserID:    "user-1",
		Phone:     "********0200",
		Source:    "http",
		Metadata:  map[string]string{"attempt": "2"},
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if cap.n != 1 {
		t.Fatalf("records = %d, want 1", cap.n)
	}
	if !cap.rec.Timestamp().Equal(at) {
		t.Errorf("timestamp = %v, want %v", cap.rec.Timestamp(), at)
	}
	if cap.rec.Body().AsString() != telemetry.EventResetFailed {
		t.Errorf("body = %v", cap.rec.Body())
	}
	if cap.rec.Severity() != otellog.SeverityWarn {
		t.Errorf("severity = %v, want warn", cap.rec.Severity())
	}
	got := map[string]string{}
	cap.rec.WalkAttributes(func(kv otellog.KeyValue) bool {
		got[kv.Key] = kv.Value.AsString()
		return true
	})
	want := map[string]string{
		"event_type":   telemetry.EventResetFailed,
		"outcome":      telemetry.OutcomeInvalidCode,
		"user_id":      "user-1",
		"phone":        "********0200",
		"source":       "http",
		"meta.attempt": "2",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attr %s = %q, want %q", k, got[k], v)
		}
	}
}

func TestLogEmitter_DefaultsTimestamp(t *testing.T) {
	cap := &recordCapture{}
	em := &logEmitter{logger: cap}
	_ = em.Emit(context.Background(), &telemetry.Event{Type: telemetry.EventResetSucceeded, Outcome: telemetry.OutcomeOK})
	if cap.rec.Timestamp().IsZero() {
		t.Error("timestamp should default to now")
	}
	if cap.rec.Severity() != otellog.SeverityInfo {
		t.Errorf("severity = %v, want info", cap.rec.Severity())
	}
}

func TestMetricsEmitter_CountsByTypeAndOutcome(t *testing.T) {
	ctx := context.Background()
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	defer func() { _ = mp.Shutdown(ctx) }()

	m, err := NewMetricsEmitter(mp)
	if err != nil {
		t.Fatalf("NewMetricsEmitter: %v", err)
	}
	_ = m.Emit(ctx, &telemetry.Event{Type: telemetry.EventCodeRequested, Outcome: telemetry.OutcomeOK})
	_ = m.Emit(ctx, &telemetry.Event{Type: telemetry.EventCodeRequested, Outcome: telemetry.OutcomeOK})
	_ = m.Emit(ctx, &telemetry.Event{Type: telemetry.EventResetFailed, Outcome: telemetry.OutcomeLocked})
	_ = m.Emit(ctx, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	var total int64
	points := 0
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "password_reset.events" {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("data = %T, want Sum[int64]", md.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
				points++
			}
		}
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if points != 2 {
		t.Errorf("series = %d, want 2", points)
	}
}
