package resetcode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldHash     = "hash"
	fieldAttempts = "attempts"
	maxTxRetries  = 4
)

// RedisStore keeps codes in a Redis hash per phone; the key TTL is the code lifetime.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store using keys "<prefix>:<phone>". Empty prefix means "pwreset:code".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "pwreset:code"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

func (s *RedisStore) key(phone string) string {
	return s.prefix + ":" + phone
}

// Save implements Store.
func (s *RedisStore) Save(ctx context.Context, phone, hash string, ttl time.Duration) error {
	key := s.key(phone)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldHash, hash, fieldAttempts, 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Consume implements Store. Concurrent consumers of the same phone are serialized with WATCH.
func (s *RedisStore) Consume(ctx context.Context, phone, code string, maxAttempts int) error {
	key := s.key(phone)
	for i := 0; i < maxTxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			vals, err := tx.HGetAll(ctx, key).Result()
			if err != nil {
				return err
			}
			stored, ok := vals[fieldHash]
			if !ok {
				return ErrNotFound
			}

			if Equal(code, stored) {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				return err
			}

			attempts, _ := strconv.Atoi(vals[fieldAttempts])
			attempts++
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if attempts >= maxAttempts {
					pipe.Del(ctx, key)
				} else {
					pipe.HIncrBy(ctx, key, fieldAttempts, 1)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if attempts >= maxAttempts {
				return ErrAttemptsExceeded
			}
			return ErrMismatch
		}, key)

		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err == nil, errors.Is(err, ErrNotFound), errors.Is(err, ErrMismatch), errors.Is(err, ErrAttemptsExceeded):
			return err
		default:
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%w: too much contention on %s", ErrUnavailable, key)
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	if err := s.redis.Del(ctx, s.key(phone)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
