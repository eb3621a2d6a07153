package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisapp "eventhub/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisAttemptRepo struct {
	client *redisapp.Client
	prefix string
}

func NewRedisAttemptRepo(client *redisapp.Client, prefix string) *RedisAttemptRepo {
	return &RedisAttemptRepo{client: client, prefix: prefix}
}

// IncrementWindow bumps the counter for key, starting a window of the given
// length on the first hit. It returns the new count and the time left.
func (r *RedisAttemptRepo) IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	const op = "repository.attempt_repository.IncrementWindow"

	if key == "" || window <= 0 {
		return 0, 0, fmt.Errorf("%s: invalid window payload", op)
	}

	k := r.key(key)

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: increment: %w", op, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("%s: set ttl: %w", op, err)
		}
	}

	ttl, err := r.client.TTL(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: read ttl: %w", op, err)
	}
	if ttl < 0 {
		ttl = 0
	}

	return count, ttl, nil
}

func (r *RedisAttemptRepo) WindowState(ctx context.Context, key string) (int64, time.Duration, error) {
	const op = "repository.attempt_repository.WindowState"

	k := r.key(key)

	count, err := r.client.Get(ctx, k).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%s: get: %w", op, err)
	}

	ttl, err := r.client.TTL(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%s: read ttl: %w", op, err)
	}
	if ttl < 0 {
		ttl = 0
	}

	return count, ttl, nil
}

func (r *RedisAttemptRepo) Reset(ctx context.Context, key string) error {
	const op = "repository.attempt_repository.Reset"

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisAttemptRepo) key(key string) string {
	return r.prefix + ":" + key
}
