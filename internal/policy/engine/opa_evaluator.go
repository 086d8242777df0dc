package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"password-recovery/internal/policy/domain"
)

const (
	policyPackage = "recovery.password"
	denyQuery     = "data." + policyPackage + ".deny"
)

// DefaultRegoPolicy holds the built-in password rules. Stored policies add deny rules to the same package.
const DefaultRegoPolicy = `package recovery.password

min_length := 6
max_bytes := 72

deny contains msg if {
	input.length < min_length
	msg := sprintf("Password must be at least %d characters", [min_length])
}

deny contains msg if {
	input.bytes > max_bytes
	msg := sprintf("Password must be at most %d bytes", [max_bytes])
}

deny contains "Password must not be your phone number" if {
	input.phone_digits != ""
	input.password == input.phone_digits
}
`

// OPAEvaluator evaluates password policies with a query prepared once at construction.
type OPAEvaluator struct {
	query rego.PreparedEvalQuery
}

// NewOPAEvaluator compiles DefaultRegoPolicy plus the rules of every enabled policy.
func NewOPAEvaluator(ctx context.Context, policies []*domain.Policy) (*OPAEvaluator, error) {
	modules := map[string]string{"policy_default.rego": DefaultRegoPolicy}
	for i, p := range policies {
		if p == nil || !p.Enabled || strings.TrimSpace(p.Rules) == "" {
			continue
		}
		modules[fmt.Sprintf("policy_%d.rego", i)] = p.Rules
	}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return nil, fmt.Errorf("compile policies: %w", err)
	}
	pq, err := rego.New(
		rego.Query(denyQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy query: %w", err)
	}
	return &OPAEvaluator{query: pq}, nil
}

// EvaluatePassword implements Evaluator.
func (e *OPAEvaluator) EvaluatePassword(ctx context.Context, in PasswordInput) (Decision, error) {
	rs, err := e.query.Eval(ctx, rego.EvalInput(buildInput(in)))
	if err != nil {
		return Decision{}, fmt.Errorf("eval password policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{}, errors.New("password policy query returned no result")
	}
	set, ok := rs[0].Expressions[0].Value.([]interface{})
	if !ok {
		return Decision{}, fmt.Errorf("password policy deny is %T, want set", rs[0].Expressions[0].Value)
	}
	var out Decision
	for _, v := range set {
		if msg, ok := v.(string); ok {
			out.Violations = append(out.Violations, msg)
		}
	}
	sort.Strings(out.Violations)
	return out, nil
}

// HealthCheck evaluates a known-good password. Returns nil if the engine answers and allows it.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	d, err := e.EvaluatePassword(ctx, PasswordInput{Password: "health-check-password"})
	if err != nil {
		return err
	}
	if !d.Allowed() {
		return fmt.Errorf("policy denies health check password: %v", d.Violations)
	}
	return nil
}

func buildInput(in PasswordInput) map[string]interface{} {
	return map[string]interface{}{
		"password":     in.Password,
		"length":       utf8.RuneCountInString(in.Password),
		"bytes":        len(in.Password),
		"phone_digits": strings.TrimPrefix(in.Phone, "+"),
	}
}
