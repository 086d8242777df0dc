// Package phone normalizes user-entered phone numbers to the E.164-like form accounts are keyed by.
package phone

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tag is the struct validation tag registered by RegisterValidation.
const Tag = "phone"

// ErrInvalid is returned for input that is not a plausible international number.
var ErrInvalid = errors.New("phone: invalid phone number")

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// Normalize trims raw, drops common separators and prefixes a missing "+".
// "+1 (555) 010-0200" and "15550100200" both give "+15550100200".
func Normalize(raw string) (string, error) {
	p := separators.Replace(strings.TrimSpace(raw))
	if p == "" {
		return "", ErrInvalid
	}
	if !strings.HasPrefix(p, "+") {
		p = "+" + p
	}
	if !e164.MatchString(p) {
		return "", ErrInvalid
	}
	return p, nil
}

// Valid reports whether raw normalizes cleanly.
func Valid(raw string) bool {
	_, err := Normalize(raw)
	return err == nil
}

// Mask hides all but the last four digits, for logs and audit metadata.
func Mask(p string) string {
	if len(p) <= 4 {
		return strings.Repeat("*", len(p))
	}
	return strings.Repeat("*", len(p)-4) + p[len(p)-4:]
}

// RegisterValidation adds the "phone" tag to v so request structs can declare `binding:"required,phone"`.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(Tag, func(fl validator.FieldLevel) bool {
		return Valid(fl.Field().String())
	})
}
