package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"anoa.com/bragboard/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitError is returned when a cooldown is still active.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func newRateLimitError(retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		Message:    fmt.Sprintf("you are doing that too fast, please wait %.0f seconds", retryAfter.Seconds()),
		RetryAfter: retryAfter,
	}
}

const maxIdleLocal = 1024

// Limiter implements per-user action cooldowns on top of redis SETNX. Without
// a redis client it falls back to token buckets held in this process.
type Limiter struct {
	rdb *redis.Client

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb, local: make(map[string]*rate.Limiter)}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Acquire claims the cooldown slot for action. It returns a *RateLimitError
// when the slot is already taken.
func (l *Limiter) Acquire(ctx context.Context, userID uuid.UUID, action string, cooldown time.Duration) error {
	if l == nil || cooldown <= 0 {
		return nil
	}
	if l.rdb == nil {
		return l.acquireLocal(key(userID, action), cooldown)
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", cooldown).Result()
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, key(userID, action)).Result()
	if err != nil || ttl < 0 {
		ttl = cooldown
	}

	return newRateLimitError(ttl)
}

func (l *Limiter) acquireLocal(k string, cooldown time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.local) > maxIdleLocal {
		for name, lim := range l.local {
			if lim.Tokens() >= 1 {
				delete(l.local, name)
			}
		}
	}

	lim, ok := l.local[k]
	if !ok {
		lim = rate.NewLimiter(rate.Every(cooldown), 1)
		l.local[k] = lim
	}

	r := lim.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return newRateLimitError(delay)
	}
	return nil
}

// Release clears a cooldown, used to roll back when the guarded action failed.
func (l *Limiter) Release(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil {
		return nil
	}
	if l.rdb == nil {
		l.mu.Lock()
		delete(l.local, key(userID, action))
		l.mu.Unlock()
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
