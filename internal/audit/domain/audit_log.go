package domain

import "time"

// Actions recorded for the password recovery flow.
const (
	ActionResetRequested = "password_reset_requested"
	ActionResetCompleted = "password_reset_completed"
	ActionResetFailed    = "password_reset_failed"
)

// ResourcePassword is the resource every recovery event applies to.
const ResourcePassword = "password"

// AuditLog represents an audit event.
type AuditLog struct {
	ID        string
	UserID    string // empty when the phone matched no account
	Action    string
	Resource  string
	IP        string
	Metadata  string // JSON object; never holds codes or passwords
	CreatedAt time.Time
}
