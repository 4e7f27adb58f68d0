package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptStore counts failed logins per account.
type LoginAttemptStore interface {
	Failures(ctx context.Context, email string) (int, error)
	// RecordFailure increments the counter and (re)arms its expiry.
	RecordFailure(ctx context.Context, email string, window time.Duration) (int, error)
	Reset(ctx context.Context, email string) error
}

type redisLoginAttempts struct {
	client redis.Cmdable
	prefix string
}

// NewLoginAttemptStore returns a Redis-backed implementation.
func NewLoginAttemptStore(client redis.Cmdable) LoginAttemptStore {
	return &redisLoginAttempts{client: client, prefix: "login:failures:"}
}

func (r *redisLoginAttempts) key(email string) string {
	return r.prefix + strings.ToLower(strings.TrimSpace(email))
}

func (r *redisLoginAttempts) Failures(ctx context.Context, email string) (int, error) {
	n, err := r.client.Get(ctx, r.key(email)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (r *redisLoginAttempts) RecordFailure(ctx context.Context, email string, window time.Duration) (int, error) {
	key := r.key(email)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (r *redisLoginAttempts) Reset(ctx context.Context, email string) error {
	return r.client.Del(ctx, r.key(email)).Err()
}
