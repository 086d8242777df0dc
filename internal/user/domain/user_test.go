package domain

import "testing"

func TestUserValidate(t *testing.T) {
	u := &User{}
	if err := u.Validate(); err == nil {
		t.Fatal("Validate should fail without phone")
	}
	u.Phone = "+15550100200"
	if err := u.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if u.Status != UserStatusActive {
		t.Errorf("Status = %q, want active default", u.Status)
	}
}

func TestUserActive(t *testing.T) {
	var nilUser *User
	if nilUser.Active() {
		t.Error("nil user should not be active")
	}
	if (&User{Status: UserStatusDisabled}).Active() {
		t.Error("disabled user should not be active")
	}
	if !(&User{Status: UserStatusActive}).Active() {
		t.Error("active user should be active")
	}
}
