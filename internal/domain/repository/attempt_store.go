package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptStore tracks per-client counters for login throttling and request
// rate limiting. Increment must be atomic: two concurrent failures from the
// same client must never read-then-write a stale count.
type AttemptStore interface {
	// Increment adds one to the counter, starting the window on first hit.
	// Returns the new count.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	// Count returns the current count and remaining window, zero when clear.
	Count(ctx context.Context, key string) (int64, time.Duration, error)
	// Reset clears the counter unconditionally.
	Reset(ctx context.Context, key string) error
}

type redisAttemptStore struct {
	rdb *redis.Client
}

func NewRedisAttemptStore(rdb *redis.Client) AttemptStore {
	return &redisAttemptStore{rdb: rdb}
}

// Increment uses INCR plus a first-hit EXPIRE in one pipeline. INCR gives the
// atomic increment-or-create semantics; ExpireNX only arms the window once.
func (s *redisAttemptStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redisAttemptStore.Increment: %w", err)
	}
	return incr.Val(), nil
}

func (s *redisAttemptStore) Count(ctx context.Context, key string) (int64, time.Duration, error) {
	count, err := s.rdb.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("redisAttemptStore.Count: %w", err)
	}
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redisAttemptStore.Count ttl: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return count, ttl, nil
}

func (s *redisAttemptStore) Reset(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redisAttemptStore.Reset: %w", err)
	}
	return nil
}
