package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omar-arnous/acquisitions/internal/core/ports"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// LoginThrottle counts failed sign-ins per email in Redis.
// Key format: login:fail:<email>. The counter expires window after the first
// failure, so lockouts lift on their own.
type LoginThrottle struct {
	client      redis.Cmdable
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
// Non-positive limits fall back to the defaults.
func NewLoginThrottle(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

var _ ports.LoginThrottle = (*LoginThrottle)(nil)

// Allowed reports whether another sign-in attempt is permitted for email.
func (t *LoginThrottle) Allowed(ctx context.Context, email string) (bool, error) {
	val, err := t.client.Get(ctx, t.key(email)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("throttle check: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return true, fmt.Errorf("throttle check: %w", err)
	}
	return n < t.maxAttempts, nil
}

// RecordFailure increments the failure counter. The key is created with its
// expiry before the increment, so a counter never outlives its window.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	key := t.key(email)
	if err := t.client.SetNX(ctx, key, 0, t.window).Err(); err != nil {
		return fmt.Errorf("throttle window: %w", err)
	}
	if err := t.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the counter after a successful sign-in.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	return t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return "login:fail:" + email
}
