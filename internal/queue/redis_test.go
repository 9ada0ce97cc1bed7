package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) *RedisQueue {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisWithClient(rdb, "test")
}

func TestRedisQueue_EnqueueDequeue(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1"))
	require.NoError(t, q.Enqueue(ctx, "job-2"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// FIFO: first in, first out.
	id, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)

	id, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "job-2", id)
}

func TestRedisQueue_DequeueTimeout(t *testing.T) {
	q := newTestQueue(t)

	id, err := q.Dequeue(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestRedisQueue_DuplicatesAreDelivered(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, "job-1"))
	require.NoError(t, q.Enqueue(ctx, "job-1"))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	// Duplicate deliveries are allowed; the job claim dedupes processing.
	assert.Equal(t, int64(2), n)
}
