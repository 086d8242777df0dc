// Package domain holds the login identity linked to a user.
package domain

import "time"

// Identity is a way for a user to authenticate. Only local (phone + password) identities carry a hash.
type Identity struct {
	ID           string
	UserID       string
	Provider     IdentityProvider
	ProviderID   string
	PasswordHash string // bcrypt; empty if not local
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type IdentityProvider string

const (
	IdentityProviderLocal IdentityProvider = "local"
)
