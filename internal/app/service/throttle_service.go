package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/catalina-labs/usuarios-api/internal/common"
	"github.com/catalina-labs/usuarios-api/internal/domain/repository"
)

const loginAttemptKeyPrefix = "login_attempts:"

// ThrottleService enforces the login-attempt policy: at most maxAttempts
// failures per client key within a fixed window. The counter lives in the
// attempt store keyed per client, so concurrent failures cannot undercount.
type ThrottleService struct {
	store       repository.AttemptStore
	maxAttempts int64
	window      time.Duration
}

func NewThrottleService(store repository.AttemptStore, maxAttempts int, window time.Duration) *ThrottleService {
	return &ThrottleService{store: store, maxAttempts: int64(maxAttempts), window: window}
}

// CheckNotBlocked fails with a RateLimitError while the client is blocked.
// Window expiry is handled by the store's TTL, so an expired window reads as
// clear.
func (s *ThrottleService) CheckNotBlocked(ctx context.Context, clientKey string) error {
	count, ttl, err := s.store.Count(ctx, loginAttemptKeyPrefix+clientKey)
	if err != nil {
		return fmt.Errorf("failed to read login attempts: %w", err)
	}
	if count >= s.maxAttempts && ttl > 0 {
		log.Printf("login blocked for client %s, retry in %s", clientKey, ttl)
		return &common.RateLimitError{RetryAfter: retryAfterSeconds(ttl)}
	}
	return nil
}

// RecordFailure increments the counter, arming the window on the first
// failure. When the count reaches the limit the current request fails with a
// RateLimitError.
func (s *ThrottleService) RecordFailure(ctx context.Context, clientKey string) error {
	key := loginAttemptKeyPrefix + clientKey
	count, err := s.store.Increment(ctx, key, s.window)
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	if count >= s.maxAttempts {
		_, ttl, err := s.store.Count(ctx, key)
		if err != nil || ttl <= 0 {
			ttl = s.window
		}
		log.Printf("client %s blocked after %d failed login attempts", clientKey, count)
		return &common.RateLimitError{RetryAfter: retryAfterSeconds(ttl)}
	}
	return nil
}

// RecordSuccess clears the counter unconditionally.
func (s *ThrottleService) RecordSuccess(ctx context.Context, clientKey string) error {
	if err := s.store.Reset(ctx, loginAttemptKeyPrefix+clientKey); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

func retryAfterSeconds(ttl time.Duration) int {
	secs := int(math.Ceil(ttl.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
