package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"standardsapi/internal/config"
)

// RedisQueue implements Queue on a Redis list (LPUSH producer, BRPOP
// consumer). The client is safe for concurrent use by multiple goroutines.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedis creates a namespaced Redis work queue and verifies connectivity.
func NewRedis(cfg config.RedisConfig) (*RedisQueue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisQueue{
		rdb: rdb,
		key: fmt.Sprintf("%s:validation:queue", cfg.Namespace),
	}, nil
}

// NewRedisWithClient wraps an existing client; used by tests with miniredis.
func NewRedisWithClient(rdb *redis.Client, namespace string) *RedisQueue {
	return &RedisQueue{
		rdb: rdb,
		key: fmt.Sprintf("%s:validation:queue", namespace),
	}
}

var _ Queue = (*RedisQueue)(nil)

func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	if err := q.rdb.LPush(ctx, q.key, jobID).Err(); err != nil {
		return fmt.Errorf("enqueue job %s: %w", jobID, err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("dequeue: %w", err)
	}
	// BRPOP returns [key, value].
	return res[1], nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
