// Package health reports whether the recovery backend can serve requests.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTimeout bounds one readiness check.
const DefaultTimeout = 3 * time.Second

// Pinger is a dependency that can be pinged for readiness (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports whether the password policy engine is usable.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// RedisPinger adapts a go-redis client to Pinger.
type RedisPinger struct {
	Client redis.UniversalClient
}

// PingContext sends PING to Redis.
func (p RedisPinger) PingContext(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}

// Checker aggregates readiness of the database, Redis and the policy engine.
// Nil dependencies are skipped.
type Checker struct {
	DB      Pinger
	Redis   Pinger
	Policy  PolicyChecker
	Timeout time.Duration
}

// Check returns nil when every configured dependency answers, or the first failure.
func (c *Checker) Check(ctx context.Context) error {
	if c == nil {
		return nil
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.DB != nil {
		if err := c.DB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.PingContext(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if c.Policy != nil {
		if err := c.Policy.HealthCheck(ctx); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	return nil
}
