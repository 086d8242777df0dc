// Package resetcode issues and verifies the one-time SMS codes used to reset a password.
// Only the SHA-256 of a code is ever stored.
package resetcode

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"time"
)

// Digits is the length of a reset code.
const Digits = 6

var (
	// ErrNotFound means no live code exists for the phone (never issued, expired or already used).
	ErrNotFound = errors.New("resetcode: code not found or expired")
	// ErrMismatch means the code is wrong; the stored code stays valid until attempts run out.
	ErrMismatch = errors.New("resetcode: code mismatch")
	// ErrAttemptsExceeded means the code was burned after too many wrong guesses.
	ErrAttemptsExceeded = errors.New("resetcode: too many attempts")
	// ErrUnavailable wraps backend failures of the store.
	ErrUnavailable = errors.New("resetcode: store unavailable")
)

// Store keeps at most one code hash per phone.
type Store interface {
	// Save replaces any code for phone with hash, valid for ttl, with zero attempts.
	Save(ctx context.Context, phone, hash string, ttl time.Duration) error
	// Consume checks code against the stored hash. A match deletes the code.
	// A mismatch counts an attempt and deletes the code once maxAttempts is reached.
	Consume(ctx context.Context, phone, code string, maxAttempts int) error
	// Delete removes the code for phone. Missing codes are not an error.
	Delete(ctx context.Context, phone string) error
}

// Generate returns a random numeric code of Digits length (e.g. "042917").
func Generate() (string, error) {
	return generate(rand.Reader)
}

// maxUnbiased is the largest multiple of 10 a byte can hold; bytes at or above it are redrawn.
const maxUnbiased = 250

func generate(r io.Reader) (string, error) {
	s := make([]byte, 0, Digits)
	b := make([]byte, Digits)
	for len(s) < Digits {
		if _, err := io.ReadFull(r, b); err != nil {
			return "", err
		}
		for _, v := range b {
			if v >= maxUnbiased {
				continue
			}
			s = append(s, '0'+v%10)
			if len(s) == Digits {
				break
			}
		}
	}
	return string(s), nil
}

// Hash returns the hex-encoded SHA-256 of code.
func Hash(code string) string {
	h := sha256.Sum256([]byte(code))
	return hex.EncodeToString(h[:])
}

// Equal compares code against storedHash in constant time.
func Equal(code, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(Hash(code)), []byte(storedHash)) == 1
}
