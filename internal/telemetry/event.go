// Package telemetry carries recovery events to observability sinks (OTel logs and metrics, Kafka).
package telemetry

import "time"

// Event types emitted by the recovery service.
const (
	EventCodeRequested  = "password_reset.code_requested"
	EventResetSucceeded = "password_reset.succeeded"
	EventResetFailed    = "password_reset.failed"
)

// Outcomes recorded on events.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeUnknown     = "unknown_phone"
	OutcomeDelivery    = "delivery_failed"
	OutcomeInvalidCode = "invalid_code"
	OutcomeLocked      = "attempts_exceeded"
	OutcomePolicy      = "policy_denied"
	OutcomeError       = "error"
)

// Event is one recovery occurrence. It never carries codes or passwords; Phone is masked.
type Event struct {
	Type      string            `json:"event_type"`
	Outcome   string            `json:"outcome"`
	UserID    string            `json:"user_id,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
