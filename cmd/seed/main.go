// seed creates a development account that can go through password recovery.
// Re-running it restores the account's password to -password, so a dev user can
// recover, log in and start over. -policy adds a stored Rego password policy.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"password-recovery/internal/config"
	"password-recovery/internal/db"
	identitydomain "password-recovery/internal/identity/domain"
	identityrepo "password-recovery/internal/identity/repository"
	"password-recovery/internal/phone"
	"password-recovery/internal/platform/logging"
	policydomain "password-recovery/internal/policy/domain"
	policyengine "password-recovery/internal/policy/engine"
	policyrepo "password-recovery/internal/policy/repository"
	"password-recovery/internal/security"
	userdomain "password-recovery/internal/user/domain"
	userrepo "password-recovery/internal/user/repository"
)

const (
	devPhone    = "+15550100200"
	devName     = "Dev User"
	devPassword = "password123"
)

func main() {
	rawPhone := flag.String("phone", devPhone, "phone number of the account")
	name := flag.String("name", devName, "display name")
	password := flag.String("password", devPassword, "password to set")
	policyFile := flag.String("policy", "", "optional .rego file (package recovery.password) to store as an enabled policy")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, true)
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	p, err := phone.Normalize(*rawPhone)
	if err != nil {
		log.Fatal().Str("phone", *rawPhone).Msg("invalid phone number")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer conn.Close()

	ctx := context.Background()
	if err := seedAccount(ctx, conn, security.NewHasher(cfg.BcryptCost), p, *name, *password, log); err != nil {
		log.Fatal().Err(err).Msg("seed account")
	}
	if *policyFile != "" {
		if err := seedPolicy(ctx, conn, *policyFile, log); err != nil {
			log.Fatal().Err(err).Msg("seed policy")
		}
	}
}

func seedAccount(ctx context.Context, conn *sql.DB, hasher *security.Hasher, p, name, password string, log zerolog.Logger) error {
	users := userrepo.NewPostgresRepository(conn)
	identities := identityrepo.NewPostgresRepository(conn)
	now := time.Now().UTC()

	u, err := users.GetByPhone(ctx, p)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		u = &userdomain.User{
			ID:        uuid.New().String(),
			Phone:     p,
			Name:      name,
			Status:    userdomain.UserStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := users.Create(ctx, u); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		log.Info().Str("user_id", u.ID).Str("phone", phone.Mask(p)).Msg("seed: user created")
	}

	id, err := identities.GetByUserAndProvider(ctx, u.ID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return fmt.Errorf("lookup identity: %w", err)
	}
	if id != nil && id.PasswordHash != "" {
		err := hasher.Compare(id.PasswordHash, password)
		if err == nil && !hasher.NeedsRehash(id.PasswordHash) {
			log.Info().Str("user_id", u.ID).Msg("seed: password already set, nothing to do")
			return nil
		}
		if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("compare password: %w", err)
		}
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if id == nil {
		err = identities.Create(ctx, &identitydomain.Identity{
			ID:           uuid.New().String(),
			UserID:       u.ID,
			Provider:     identitydomain.IdentityProviderLocal,
			ProviderID:   u.ID,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	} else {
		err = identities.UpdatePasswordHash(ctx, id.ID, hash)
	}
	if err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	log.Info().Str("user_id", u.ID).Msg("seed: password set")
	return nil
}

// seedPolicy stores the Rego module in path after checking that it compiles with the built-in rules.
func seedPolicy(ctx context.Context, conn *sql.DB, path string, log zerolog.Logger) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pol := &policydomain.Policy{
		ID:        uuid.New().String(),
		Name:      strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Rules:     string(b),
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := policyengine.NewOPAEvaluator(ctx, []*policydomain.Policy{pol}); err != nil {
		return err
	}
	if err := policyrepo.NewPostgresRepository(conn).Create(ctx, pol); err != nil {
		return fmt.Errorf("store policy: %w", err)
	}
	log.Info().Str("policy_id", pol.ID).Str("name", pol.Name).Msg("seed: password policy stored")
	return nil
}
