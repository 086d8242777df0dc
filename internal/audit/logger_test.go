package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"password-recovery/internal/audit/domain"
)

// mockAuditRepo implements audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, zerolog.Nop())
	ctx := WithClientIP(context.Background(), "192.168.1.1")

	logger.LogEvent(ctx, "user-1", domain.ActionResetCompleted, map[string]string{"phone": "****0200"})

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.UserID != "user-1" {
		t.Errorf("user_id = %q, want %q", entry.UserID, "user-1")
	}
	if entry.Action != domain.ActionResetCompleted {
		t.Errorf("action = %q", entry.Action)
	}
	if entry.Resource != domain.ResourcePassword {
		t.Errorf("resource = %q", entry.Resource)
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(entry.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}
	if meta["phone"] != "****0200" {
		t.Errorf("metadata = %v", meta)
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_UnknownIPAndNoMetadata(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, zerolog.Nop()).LogEvent(context.Background(), "", domain.ActionResetRequested, nil)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("ip = %q, want unknown", repo.entries[0].IP)
	}
	if repo.entries[0].Metadata != "" {
		t.Errorf("metadata = %q, want empty", repo.entries[0].Metadata)
	}
}

func TestLogger_LogEvent_RepoErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	NewLogger(repo, zerolog.New(&buf)).LogEvent(context.Background(), "user-1", domain.ActionResetFailed, nil)

	if !strings.Contains(buf.String(), "db down") {
		t.Errorf("log output = %q, want repo error", buf.String())
	}
}

func TestLogger_NilRepo(t *testing.T) {
	NewLogger(nil, zerolog.Nop()).LogEvent(context.Background(), "user-1", domain.ActionResetFailed, nil)
	var l *Logger
	l.LogEvent(context.Background(), "user-1", domain.ActionResetFailed, nil)
}
