// Package devotp keeps plain reset codes by phone for dev-only retrieval (GET /dev/forgot-password/otp).
// It is wired in place of SMS delivery when OTP_RETURN_TO_CLIENT is on outside production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds plain codes by phone. Not used in production.
type Store interface {
	// Put stores code for phone until expiresAt, replacing any previous code.
	Put(ctx context.Context, phone, code string, expiresAt time.Time)
	// Get returns the code for phone if present and not expired.
	Get(ctx context.Context, phone string) (code string, ok bool)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Put stores code for phone until expiresAt.
func (s *MemoryStore) Put(ctx context.Context, phone, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[phone] = entry{code: code, expiresAt: expiresAt}
}

// Get returns the code for phone if present and not expired. Expired entries are dropped.
func (s *MemoryStore) Get(ctx context.Context, phone string) (string, bool) {
	s.mu.RLock()
	e, ok := s.m[phone]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.After(s.nowF()) {
		s.mu.Lock()
		// A Put may have replaced the entry since the read lock was released.
		if cur, ok := s.m[phone]; ok && !cur.expiresAt.After(s.nowF()) {
			delete(s.m, phone)
		}
		s.mu.Unlock()
		return "", false
	}
	return e.code, true
}

// Sender records codes in a Store instead of texting them. It satisfies sms.Sender.
type Sender struct {
	Store Store
	TTL   time.Duration
	nowF  func() time.Time
}

// NewSender returns a Sender that keeps each code for ttl.
func NewSender(store Store, ttl time.Duration) *Sender {
	return &Sender{Store: store, TTL: ttl, nowF: func() time.Time { return time.Now().UTC() }}
}

// SendCode stores code for phone. It never fails.
func (s *Sender) SendCode(ctx context.Context, phone, code string) error {
	s.Store.Put(ctx, phone, code, s.nowF().Add(s.TTL))
	return nil
}
