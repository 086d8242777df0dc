// Package audit records security-relevant events of the recovery flow.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"password-recovery/internal/audit/domain"
	auditrepo "password-recovery/internal/audit/repository"
)

type clientIPKey struct{}

// WithClientIP returns a context carrying the caller's IP for audit entries.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the IP stored by WithClientIP, or "unknown".
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// AuditLogger writes a single audit event.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action string, metadata map[string]string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
	log  zerolog.Logger
	nowF func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo. A nil repo makes LogEvent a no-op.
func NewLogger(repo auditrepo.Repository, log zerolog.Logger) *Logger {
	return &Logger{repo: repo, log: log, nowF: func() time.Time { return time.Now().UTC() }}
}

// LogEvent writes one audit log entry on ResourcePassword. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action string, metadata map[string]string) {
	if l == nil || l.repo == nil {
		return
	}
	var meta string
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err == nil {
			meta = string(b)
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  domain.ResourcePassword,
		IP:        ClientIP(ctx),
		Metadata:  meta,
		CreatedAt: l.nowF(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Error().Err(err).Str("action", action).Msg("audit: failed to log event")
	}
}
