// Package domain holds the user entity.
package domain

import (
	"errors"
	"time"
)

// User is an account that can log in with its phone number and password.
type User struct {
	ID        string
	Phone     string // normalized, unique; the login and recovery identifier
	Name      string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Phone == "" {
		return errors.New("phone is required")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}

// Active reports whether the user may log in and recover a password.
func (u *User) Active() bool {
	return u != nil && u.Status == UserStatusActive
}
