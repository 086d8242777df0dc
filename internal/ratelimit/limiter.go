// Package ratelimit enforces fixed-window request budgets for code requests, per phone and per client IP.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned once a key has used up its budget for the current window.
	ErrRateLimited = errors.New("ratelimit: too many requests")
	// ErrUnavailable wraps backend failures.
	ErrUnavailable = errors.New("ratelimit: backend unavailable")
)

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	// Allow records a hit for key and returns ErrRateLimited when the count exceeds the limit.
	Allow(ctx context.Context, key string) error
}

// Config is the budget shared by all keys.
type Config struct {
	Limit  int
	Window time.Duration
}

// RedisLimiter is a Limiter backed by INCR/EXPIRE NX counters, shared across instances.
type RedisLimiter struct {
	redis  redis.UniversalClient
	prefix string
	cfg    Config
}

// NewRedis returns a RedisLimiter using keys "<prefix>:<key>". Empty prefix means "pwreset:rl".
func NewRedis(client redis.UniversalClient, prefix string, cfg Config) *RedisLimiter {
	if prefix == "" {
		prefix = "pwreset:rl"
	}
	return &RedisLimiter{redis: client, prefix: prefix, cfg: cfg}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	k := l.prefix + ":" + key
	var incr *redis.IntCmd
	// Fixed window: the first hit starts the window. INCR and EXPIRE NX share one MULTI.
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.cfg.Window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if incr.Val() > int64(l.cfg.Limit) {
		return ErrRateLimited
	}
	return nil
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is an in-process Limiter for single-instance deployments.
type MemoryLimiter struct {
	cfg  Config
	mu   sync.Mutex
	m    map[string]*window
	nowF func() time.Time
}

// NewMemory returns an empty MemoryLimiter.
func NewMemory(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{cfg: cfg, m: make(map[string]*window), nowF: time.Now}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.nowF()
	w, ok := l.m[key]
	if !ok || !now.Before(w.resetAt) {
		l.sweepLocked(now)
		w = &window{resetAt: now.Add(l.cfg.Window)}
		l.m[key] = w
	}
	w.count++
	if w.count > l.cfg.Limit {
		return ErrRateLimited
	}
	return nil
}

// sweepLocked drops expired windows so the map does not grow without bound.
func (l *MemoryLimiter) sweepLocked(now time.Time) {
	for k, w := range l.m {
		if !now.Before(w.resetAt) {
			delete(l.m, k)
		}
	}
}
