package repository

import (
	"context"
	"database/sql"
	"errors"

	"password-recovery/internal/identity/domain"
)

// ErrNotFound is returned by updates that matched no identity.
var ErrNotFound = errors.New("identity not found")

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an identity repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByUserAndProvider returns the identity for the given user and provider, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUserAndProvider(ctx context.Context, userID string, provider domain.IdentityProvider) (*domain.Identity, error) {
	var (
		i          domain.Identity
		prov       string
		hash       sql.NullString
		providerID sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_id, password_hash, created_at, updated_at
		   FROM identities WHERE user_id = $1 AND provider = $2`,
		userID, string(provider),
	).Scan(&i.ID, &i.UserID, &prov, &providerID, &hash, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	i.Provider = domain.IdentityProvider(prov)
	i.ProviderID = providerID.String
	i.PasswordHash = hash.String
	return &i, nil
}

// Create persists the identity to the database. The identity must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, i *domain.Identity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO identities (id, user_id, provider, provider_id, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		i.ID, i.UserID, string(i.Provider), i.ProviderID,
		sql.NullString{String: i.PasswordHash, Valid: i.PasswordHash != ""},
		i.CreatedAt, i.UpdatedAt,
	)
	return err
}

// UpdatePasswordHash updates the password hash for the identity with the given id.
func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE identities SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, sql.NullString{String: passwordHash, Valid: passwordHash != ""},
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
