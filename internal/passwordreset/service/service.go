// Package service implements phone-based password recovery: issue an SMS code, then reset the password with it.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"password-recovery/internal/audit"
	auditdomain "password-recovery/internal/audit/domain"
	identitydomain "password-recovery/internal/identity/domain"
	"password-recovery/internal/phone"
	policyengine "password-recovery/internal/policy/engine"
	"password-recovery/internal/ratelimit"
	"password-recovery/internal/resetcode"
	"password-recovery/internal/security"
	"password-recovery/internal/sms"
	"password-recovery/internal/telemetry"
	userdomain "password-recovery/internal/user/domain"
)

const eventSource = "password-recovery"

var tracer = otel.Tracer("password-recovery/passwordreset")

// UserRepo is the minimal user repository needed by the service.
type UserRepo interface {
	GetByPhone(ctx context.Context, phone string) (*userdomain.User, error)
}

// IdentityRepo is the minimal identity repository needed by the service.
type IdentityRepo interface {
	GetByUserAndProvider(ctx context.Context, userID string, provider identitydomain.IdentityProvider) (*identitydomain.Identity, error)
	Create(ctx context.Context, i *identitydomain.Identity) error
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
}

// Config tunes code lifetime and abuse limits.
type Config struct {
	CodeTTL     time.Duration
	MaxAttempts int
	// ConcealUnknownPhone answers requests for unregistered phones with success instead of ErrPhoneNotRegistered.
	ConcealUnknownPhone bool
}

// Deps are the collaborators of Service. PhoneLimiter, IPLimiter, Audit and Events may be nil.
type Deps struct {
	Users        UserRepo
	Identities   IdentityRepo
	Codes        resetcode.Store
	Sender       sms.Sender
	PhoneLimiter ratelimit.Limiter
	IPLimiter    ratelimit.Limiter
	Policy       policyengine.Evaluator
	Hasher       *security.Hasher
	Audit        audit.AuditLogger
	Events       telemetry.EventEmitter
	Log          zerolog.Logger
}

// Service runs the two recovery operations.
type Service struct {
	Deps
	cfg  Config
	nowF func() time.Time
}

// NewService returns a Service. Zero Config fields take defaults (10m TTL, 5 attempts).
func NewService(deps Deps, cfg Config) *Service {
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Service{Deps: deps, cfg: cfg, nowF: func() time.Time { return time.Now().UTC() }}
}

// RequestCode sends a fresh reset code to the account registered with rawPhone.
// Any previous code for the phone stops working.
func (s *Service) RequestCode(ctx context.Context, rawPhone string) (err error) {
	ctx, span := tracer.Start(ctx, "PasswordReset.RequestCode")
	defer func() { endSpan(span, err) }()

	p, err := phone.Normalize(rawPhone)
	if err != nil {
		return ErrInvalidPhone
	}
	if err := s.allow(ctx, p); err != nil {
		s.event(telemetry.EventCodeRequested, outcomeOf(err), "", p)
		return err
	}

	u, err := s.Users.GetByPhone(ctx, p)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !u.Active() {
		s.event(telemetry.EventCodeRequested, telemetry.OutcomeUnknown, "", p)
		s.Log.Info().Str("phone", phone.Mask(p)).Msg("password reset: code requested for unknown phone")
		if s.cfg.ConcealUnknownPhone {
			return nil
		}
		return ErrPhoneNotRegistered
	}

	code, err := resetcode.Generate()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	if err := s.Codes.Save(ctx, p, resetcode.Hash(code), s.cfg.CodeTTL); err != nil {
		return fmt.Errorf("save code: %w", err)
	}
	if err := s.Sender.SendCode(ctx, p, code); err != nil {
		if derr := s.Codes.Delete(ctx, p); derr != nil {
			s.Log.Warn().Err(derr).Str("phone", phone.Mask(p)).Msg("password reset: drop undelivered code")
		}
		s.Log.Error().Err(err).Str("user_id", u.ID).Msg("password reset: code delivery failed")
		s.event(telemetry.EventCodeRequested, telemetry.OutcomeDelivery, u.ID, p)
		return ErrDeliveryFailed
	}

	s.audit(ctx, u.ID, auditdomain.ActionResetRequested, p, "")
	s.event(telemetry.EventCodeRequested, telemetry.OutcomeOK, u.ID, p)
	s.Log.Info().Str("user_id", u.ID).Msg("password reset: code sent")
	return nil
}

// ResetPassword replaces the password of the account for rawPhone if code is the live code sent to it.
// The password policy runs before the code is checked, so a refused password does not use up an attempt.
func (s *Service) ResetPassword(ctx context.Context, rawPhone, code, newPassword string) (err error) {
	ctx, span := tracer.Start(ctx, "PasswordReset.ResetPassword")
	defer func() { endSpan(span, err) }()

	p, err := phone.Normalize(rawPhone)
	if err != nil {
		return ErrInvalidPhone
	}
	if code == "" {
		return ErrCodeRequired
	}

	decision, err := s.Policy.EvaluatePassword(ctx, policyengine.PasswordInput{Password: newPassword, Phone: p})
	if err != nil {
		return fmt.Errorf("password policy: %w", err)
	}
	if !decision.Allowed() {
		s.event(telemetry.EventResetFailed, telemetry.OutcomePolicy, "", p)
		return &PolicyError{Violations: decision.Violations}
	}

	if err := s.Codes.Consume(ctx, p, code, s.cfg.MaxAttempts); err != nil {
		switch {
		case errors.Is(err, resetcode.ErrNotFound), errors.Is(err, resetcode.ErrMismatch):
			s.event(telemetry.EventResetFailed, telemetry.OutcomeInvalidCode, "", p)
			return ErrInvalidCode
		case errors.Is(err, resetcode.ErrAttemptsExceeded):
			s.audit(ctx, "", auditdomain.ActionResetFailed, p, telemetry.OutcomeLocked)
			s.event(telemetry.EventResetFailed, telemetry.OutcomeLocked, "", p)
			return ErrAttemptsExceeded
		default:
			return fmt.Errorf("consume code: %w", err)
		}
	}

	u, err := s.Users.GetByPhone(ctx, p)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !u.Active() {
		return ErrInvalidCode
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return &PolicyError{Violations: []string{"Password must be at most 72 bytes"}}
		}
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.storePassword(ctx, u.ID, hash); err != nil {
		s.event(telemetry.EventResetFailed, telemetry.OutcomeError, u.ID, p)
		return err
	}

	s.audit(ctx, u.ID, auditdomain.ActionResetCompleted, p, "")
	s.event(telemetry.EventResetSucceeded, telemetry.OutcomeOK, u.ID, p)
	s.Log.Info().Str("user_id", u.ID).Msg("password reset: password changed")
	return nil
}

// storePassword updates the local identity, creating it for users that never had a password.
func (s *Service) storePassword(ctx context.Context, userID, hash string) error {
	id, err := s.Identities.GetByUserAndProvider(ctx, userID, identitydomain.IdentityProviderLocal)
	if err != nil {
		return fmt.Errorf("lookup identity: %w", err)
	}
	if id == nil {
		now := s.nowF()
		err = s.Identities.Create(ctx, &identitydomain.Identity{
			ID:           uuid.New().String(),
			UserID:       userID,
			Provider:     identitydomain.IdentityProviderLocal,
			ProviderID:   userID,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create identity: %w", err)
		}
		return nil
	}
	if err := s.Identities.UpdatePasswordHash(ctx, id.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// allow charges one code request to the phone and to the caller's IP.
func (s *Service) allow(ctx context.Context, p string) error {
	if s.PhoneLimiter != nil {
		if err := s.PhoneLimiter.Allow(ctx, "phone:"+p); err != nil {
			return limitErr(err)
		}
	}
	if ip := audit.ClientIP(ctx); s.IPLimiter != nil && ip != "unknown" {
		if err := s.IPLimiter.Allow(ctx, "ip:"+ip); err != nil {
			return limitErr(err)
		}
	}
	return nil
}

func limitErr(err error) error {
	if errors.Is(err, ratelimit.ErrRateLimited) {
		return ErrRateLimited
	}
	return fmt.Errorf("rate limit: %w", err)
}

func outcomeOf(err error) string {
	if errors.Is(err, ErrRateLimited) {
		return telemetry.OutcomeRateLimited
	}
	return telemetry.OutcomeError
}

func (s *Service) audit(ctx context.Context, userID, action, p, reason string) {
	if s.Audit == nil {
		return
	}
	meta := map[string]string{"phone": phone.Mask(p)}
	if reason != "" {
		meta["reason"] = reason
	}
	s.Audit.LogEvent(ctx, userID, action, meta)
}

func (s *Service) event(typ, outcome, userID, p string) {
	telemetry.EmitAsync(s.Events, s.Log, &telemetry.Event{
		Type:      typ,
		Outcome:   outcome,
		UserID:    userID,
		Phone:     phone.Mask(p),
		Source:    eventSource,
		CreatedAt: s.nowF(),
	})
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
