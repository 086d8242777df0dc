package repository

import (
	"context"

	"password-recovery/internal/identity/domain"
)

// Repository defines persistence for identities.
type Repository interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error)
	Create(ctx context.Context, i *domain.Identity) error
	// UpdatePasswordHash replaces the hash of identity id. Returns ErrNotFound if no row matched.
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
}
