// Package engine decides whether a new password is acceptable, using OPA Rego.
package engine

import "context"

// PasswordInput is what a password policy sees. It stays in process and is never logged.
type PasswordInput struct {
	Password string
	Phone    string // normalized, e.g. "+15550100200"
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	// Violations are user-facing reasons the password was refused, sorted. Empty means allowed.
	Violations []string
}

// Allowed reports whether no rule denied the password.
func (d Decision) Allowed() bool {
	return len(d.Violations) == 0
}

// Evaluator evaluates password policies.
type Evaluator interface {
	EvaluatePassword(ctx context.Context, in PasswordInput) (Decision, error)
}
