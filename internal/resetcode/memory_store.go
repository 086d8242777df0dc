package resetcode

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	hash      string
	attempts  int
	expiresAt time.Time
}

// MemoryStore is an in-process Store for single-instance deployments and tests.
type MemoryStore struct {
	mu   sync.Mutex
	m    map[string]memEntry
	nowF func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]memEntry),
		nowF: time.Now,
	}
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, phone, hash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowF()
	s.sweepLocked(now)
	s.m[phone] = memEntry{hash: hash, expiresAt: now.Add(ttl)}
	return nil
}

// sweepLocked drops expired codes that nobody came back to consume.
func (s *MemoryStore) sweepLocked(now time.Time) {
	for k, e := range s.m {
		if !e.expiresAt.After(now) {
			delete(s.m, k)
		}
	}
}

// Consume implements Store.
func (s *MemoryStore) Consume(ctx context.Context, phone, code string, maxAttempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[phone]
	if !ok {
		return ErrNotFound
	}
	if !e.expiresAt.After(s.nowF()) {
		delete(s.m, phone)
		return ErrNotFound
	}
	if Equal(code, e.hash) {
		delete(s.m, phone)
		return nil
	}
	e.attempts++
	if e.attempts >= maxAttempts {
		delete(s.m, phone)
		return ErrAttemptsExceeded
	}
	s.m[phone] = e
	return ErrMismatch
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, phone)
	return nil
}
