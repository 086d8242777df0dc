package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"password-recovery/internal/audit/domain"
	"password-recovery/internal/db/dbtest"
)

func TestPostgresRepository_ListByUserNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewPostgresRepository(conn)
	ctx := context.Background()

	userID := uuid.NewString()
	dbtest.Exec(t, conn, `INSERT INTO users (id, phone) VALUES ($1, $2)`, userID, "+1555"+userID[:8])
	t.Cleanup(func() {
		dbtest.Exec(t, conn, `DELETE FROM audit_logs WHERE user_id = $1`, userID)
		dbtest.Exec(t, conn, `DELETE FROM users WHERE id = $1`, userID)
	})

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	actions := []string{domain.ActionResetRequested, domain.ActionResetFailed, domain.ActionResetCompleted}
	for i, action := range actions {
		a := &domain.AuditLog{
			ID:        uuid.NewString(),
			UserID:    userID,
			Action:    action,
			Resource:  domain.ResourcePassword,
			IP:        "198.51.100.4",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i == 0 {
			a.Metadata = `{"channel":"sms"}`
		}
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create %s: %v", action, err)
		}
	}

	logs, err := repo.ListByUser(ctx, userID, 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("len = %d, want 3", len(logs))
	}
	want := []string{domain.ActionResetCompleted, domain.ActionResetFailed, domain.ActionResetRequested}
	for i, a := range logs {
		if a.Action != want[i] {
			t.Errorf("logs[%d].Action = %q, want %q", i, a.Action, want[i])
		}
		if a.UserID != userID || a.IP != "198.51.100.4" || a.Resource != domain.ResourcePassword {
			t.Errorf("logs[%d] = %+v", i, a)
		}
	}
	if logs[0].Metadata != "" {
		t.Errorf("Metadata = %q, want empty for NULL", logs[0].Metadata)
	}
	if logs[2].Metadata != `{"channel":"sms"}` {
		t.Errorf("Metadata = %q", logs[2].Metadata)
	}

	page, err := repo.ListByUser(ctx, userID, 1, 1)
	if err != nil {
		t.Fatalf("ListByUser page: %v", err)
	}
	if len(page) != 1 || page[0].Action != domain.ActionResetFailed {
		t.Errorf("page = %+v, want the middle entry", page)
	}
}

func TestPostgresRepository_CreateWithoutUser(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewPostgresRepository(conn)

	a := &domain.AuditLog{
		ID:        uuid.NewString(),
		Action:    domain.ActionResetRequested,
		Resource:  domain.ResourcePassword,
		IP:        "unknown",
		CreatedAt: time.Now().UTC(),
	}
	t.Cleanup(func() { dbtest.Exec(t, conn, `DELETE FROM audit_logs WHERE id = $1`, a.ID) })
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("Create with empty user id: %v", err)
	}

	var isNull bool
	if err := conn.QueryRow(`SELECT user_id IS NULL FROM audit_logs WHERE id = $1`, a.ID).Scan(&isNull); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !isNull {
		t.Error("user_id should be stored as NULL")
	}
}

func TestPostgresRepository_ListByUserEmpty(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewPostgresRepository(conn)

	logs, err := repo.ListByUser(context.Background(), uuid.NewString(), 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("len = %d, want 0", len(logs))
	}
}
