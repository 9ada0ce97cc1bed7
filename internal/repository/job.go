package repository

import (
	"context"
	"time"

	"standardsapi/internal/model"
)

// JobRepository defines persistence for validation jobs. The job table is the
// source of truth for the state machine; the Redis queue only wakes workers
// up, so every transition here must be safe against duplicate deliveries.
type JobRepository interface {
	Create(ctx context.Context, job *model.ValidationJob) (*model.ValidationJob, error)

	FindByID(ctx context.Context, id string) (*model.ValidationJob, error)

	// ActiveByDocument returns the queued or running job for a document, or
	// (nil, nil) when there is none.
	ActiveByDocument(ctx context.Context, documentID string) (*model.ValidationJob, error)

	// LatestByDocument returns the most recently enqueued job for a document,
	// or (nil, nil) when the document was never enqueued.
	LatestByDocument(ctx context.Context, documentID string) (*model.ValidationJob, error)

	// Claim atomically transitions a due queued job to running for the given
	// worker, bumping the attempt count and setting the claim expiry. Exactly
	// one concurrent caller wins; the rest get ErrClaimConflict.
	Claim(ctx context.Context, id, workerID string, claimTTL time.Duration) (*model.ValidationJob, error)

	// SetResolvedStandard records which standard the running job resolved.
	SetResolvedStandard(ctx context.Context, id, standardID string) error

	// Finish moves a running job to a terminal state.
	Finish(ctx context.Context, id string, state model.JobState, lastError *string) error

	// Retry moves a running job back to queued with the next attempt time.
	Retry(ctx context.Context, id, lastError string, nextAttemptAt time.Time) error

	// DueQueued lists queued jobs whose next attempt time has passed.
	DueQueued(ctx context.Context, now time.Time, limit int) ([]string, error)

	// ReclaimExpired resets running jobs with an expired claim back to queued
	// and returns their ids, so crashed workers cannot strand a job.
	ReclaimExpired(ctx context.Context, now time.Time) ([]string, error)
}
