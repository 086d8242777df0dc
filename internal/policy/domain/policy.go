// Package domain holds stored password policies.
package domain

import "time"

// Policy is an extra Rego module in package recovery.password. Its deny rules add to the built-in ones.
type Policy struct {
	ID        string
	Name      string
	Rules     string
	Enabled   bool
	CreatedAt time.Time
}
