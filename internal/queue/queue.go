// Package queue provides the Redis-backed work queue that wakes validation
// workers up. The queue is a delivery channel, not a source of truth: the
// job table owns the state machine, the claim there is what guarantees
// at-most-one-worker, and a job id delivered twice is harmless because the
// second claim attempt loses. All keys are namespaced per deployment.
package queue

import (
	"context"
	"time"
)

// Queue is the job id delivery channel between the API process and workers.
type Queue interface {
	// Enqueue pushes a job id onto the queue. Safe to call with ids already
	// present; consumers tolerate duplicates.
	Enqueue(ctx context.Context, jobID string) error

	// Dequeue blocks up to timeout for the next job id. It returns ("", nil)
	// on timeout so callers can interleave periodic work.
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)

	// Len reports the number of pending deliveries, for observability.
	Len(ctx context.Context) (int64, error)

	Close() error
}
