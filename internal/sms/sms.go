// Package sms delivers password reset codes by text message.
package sms

import (
	"context"
	"strings"
)

// Sender delivers a reset code to a phone number. Implementations must not log the code.
type Sender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, phone, code string) error

// SendCode calls f.
func (f SenderFunc) SendCode(ctx context.Context, phone, code string) error {
	return f(ctx, phone, code)
}

// digitsOnly strips everything but digits, turning "+1 555-0100" into "15550100".
func digitsOnly(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
