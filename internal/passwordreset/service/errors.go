package service

import (
	"errors"
	"strings"
)

// Sentinel errors for the reset service; the handler maps them to HTTP statuses.
var (
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrPhoneNotRegistered = errors.New("phone number not registered")
	ErrRateLimited        = errors.New("too many code requests")
	ErrDeliveryFailed     = errors.New("code delivery failed")
	ErrCodeRequired       = errors.New("code is required")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrAttemptsExceeded   = errors.New("too many wrong codes")
	ErrPasswordRejected   = errors.New("password rejected by policy")
)

// PolicyError lists why a new password was refused. errors.Is(err, ErrPasswordRejected) holds.
type PolicyError struct {
	Violations []string
}

func (e *PolicyError) Error() string {
	if len(e.Violations) == 0 {
		return ErrPasswordRejected.Error()
	}
	return strings.Join(e.Violations, "; ")
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrPasswordRejected
}
