package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"password-recovery/internal/db/dbtest"
	"password-recovery/internal/policy/domain"
)

func TestPostgresRepository_ListEnabledSkipsDisabled(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewPostgresRepository(conn)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	enabled := &domain.Policy{ID: uuid.NewString(), Name: "min-digits", Rules: "package recovery.password", Enabled: true, CreatedAt: base}
	later := &domain.Policy{ID: uuid.NewString(), Name: "no-repeats", Rules: "package recovery.password", Enabled: true, CreatedAt: base.Add(time.Second)}
	disabled := &domain.Policy{ID: uuid.NewString(), Name: "off", Rules: "package recovery.password", Enabled: false, CreatedAt: base}
	for _, p := range []*domain.Policy{later, disabled, enabled} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("Create %s: %v", p.Name, err)
		}
	}
	t.Cleanup(func() {
		dbtest.Exec(t, conn, `DELETE FROM password_policies WHERE id IN ($1, $2, $3)`, enabled.ID, later.ID, disabled.ID)
	})

	list, err := repo.ListEnabled(ctx)
	if err != nil {
		t.Fatalf("ListEnabled: %v", err)
	}
	var ours []*domain.Policy
	for _, p := range list {
		if !p.Enabled {
			t.Errorf("ListEnabled returned disabled policy %s", p.ID)
		}
		switch p.ID {
		case disabled.ID:
			t.Error("ListEnabled returned the disabled policy")
		case enabled.ID, later.ID:
			ours = append(ours, p)
		}
	}
	if len(ours) != 2 {
		t.Fatalf("found %d of our enabled policies, want 2", len(ours))
	}
	if ours[0].ID != enabled.ID || ours[1].ID != later.ID {
		t.Errorf("order = %s, %s; want oldest first", ours[0].Name, ours[1].Name)
	}
	if ours[0].Rules != enabled.Rules || !ours[0].CreatedAt.Equal(base) {
		t.Errorf("got %+v", ours[0])
	}
}
