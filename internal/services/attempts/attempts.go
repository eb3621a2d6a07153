// Package attempts tracks failed login attempts per key and locks the key
// once a fixed window collects too many failures.
package attempts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"eventhub/internal/repository"

	"github.com/patrickmn/go-cache"
)

type Limiter interface {
	// Blocked reports whether key is locked and for how long.
	Blocked(ctx context.Context, key string) (bool, time.Duration, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// Key normalizes an email into a limiter key.
func Key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LocalLimiter keeps counters in process memory. MaxAttempts <= 0 disables it.
type LocalLimiter struct {
	mu     sync.Mutex
	cache  *cache.Cache
	max    int
	window time.Duration
}

func NewLocalLimiter(maxAttempts int, window time.Duration) *LocalLimiter {
	return &LocalLimiter{
		cache:  cache.New(window, 2*window),
		max:    maxAttempts,
		window: window,
	}
}

func (l *LocalLimiter) Blocked(_ context.Context, key string) (bool, time.Duration, error) {
	if l.max <= 0 {
		return false, 0, nil
	}

	v, exp, ok := l.cache.GetWithExpiration(key)
	if !ok {
		return false, 0, nil
	}

	count, _ := v.(int)
	if count < l.max {
		return false, 0, nil
	}

	return true, time.Until(exp), nil
}

func (l *LocalLimiter) Fail(_ context.Context, key string) error {
	const op = "attempts.LocalLimiter.Fail"

	if l.max <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.cache.Add(key, 1, l.window); err == nil {
		return nil
	}

	if _, err := l.cache.IncrementInt(key, 1); err != nil {
		// the entry expired between Add and IncrementInt
		if addErr := l.cache.Add(key, 1, l.window); addErr != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func (l *LocalLimiter) Reset(_ context.Context, key string) error {
	l.cache.Delete(key)

	return nil
}

// RedisLimiter shares counters between instances through redis.
type RedisLimiter struct {
	repo   repository.AttemptRepository
	max    int
	window time.Duration
}

func NewRedisLimiter(repo repository.AttemptRepository, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		repo:   repo,
		max:    maxAttempts,
		window: window,
	}
}

func (l *RedisLimiter) Blocked(ctx context.Context, key string) (bool, time.Duration, error) {
	const op = "attempts.RedisLimiter.Blocked"

	if l.max <= 0 {
		return false, 0, nil
	}

	count, ttl, err := l.repo.WindowState(ctx, key)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}

	if count < int64(l.max) {
		return false, 0, nil
	}

	return true, ttl, nil
}

func (l *RedisLimiter) Fail(ctx context.Context, key string) error {
	const op = "attempts.RedisLimiter.Fail"

	if l.max <= 0 {
		return nil
	}

	if _, _, err := l.repo.IncrementWindow(ctx, key, l.window); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	const op = "attempts.RedisLimiter.Reset"

	if l.max <= 0 {
		return nil
	}

	if err := l.repo.Reset(ctx, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
