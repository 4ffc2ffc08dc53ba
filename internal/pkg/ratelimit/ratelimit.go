// Package ratelimit provides a fixed-window request limiter backed by Redis.
//
// It caps how often OTP resend and login-start may be attempted per account.
// Limits are advisory guards against abuse, not idempotency: exceeding a
// window never corrupts flow state, it only rejects the attempt.
package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether an attempt identified by key may proceed.
type Limiter interface {
	// Allow records one attempt for key and reports whether it is within
	// the configured window limit.
	Allow(ctx context.Context, key string) (bool, error)
}

// FixedWindow implements Limiter with an INCR+EXPIRE counter per window.
type FixedWindow struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

const (
	defaultLimit  = 5
	defaultWindow = time.Minute
)

// New creates a FixedWindow limiter allowing limit attempts per window.
func New(client *redis.Client, limit int64, window time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = defaultLimit
	}
	if window <= 0 {
		window = defaultWindow
	}

	return &FixedWindow{
		client: client,
		prefix: "ratelimit:",
		limit:  limit,
		window: window,
	}
}

// Allow increments the counter for key and reports whether the attempt fits
// the window. The first attempt in a window sets the expiry; the counter
// disappears with the window, so idle keys cost nothing.
func (l *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	fk := l.prefix + key

	count, err := l.client.Incr(ctx, fk).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, fk, l.window).Err(); err != nil {
			return false, err
		}
	}

	return count <= l.limit, nil
}
