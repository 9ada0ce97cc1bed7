package postgres

import (
	"context"
	"database/sql"
	"time"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

// JobPostgres is a PostgreSQL implementation of repository.JobRepository.
// The claim is a single conditional UPDATE: compare-and-set on state rather
// than a held lock, so a worker crash mid-claim cannot deadlock the job.
type JobPostgres struct {
	db *sql.DB
}

func NewJobPostgres(db *sql.DB) *JobPostgres {
	return &JobPostgres{db: db}
}

var _ repository.JobRepository = (*JobPostgres)(nil)

const jobColumns = "id, document_id, content_key, resolved_standard_id, state, attempts, worker_id, enqueued_at, next_attempt_at, claim_expires_at, started_at, finished_at, last_error"

func scanJob(row interface{ Scan(...any) error }) (*model.ValidationJob, error) {
	var j model.ValidationJob
	if err := row.Scan(
		&j.ID,
		&j.DocumentID,
		&j.ContentKey,
		&j.ResolvedStandardID,
		&j.State,
		&j.Attempts,
		&j.WorkerID,
		&j.EnqueuedAt,
		&j.NextAttemptAt,
		&j.ClaimExpiresAt,
		&j.StartedAt,
		&j.FinishedAt,
		&j.LastError,
	); err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JobPostgres) Create(ctx context.Context, job *model.ValidationJob) (*model.ValidationJob, error) {
	const q = `
		INSERT INTO validation_jobs (id, document_id, content_key, state, attempts, enqueued_at, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + jobColumns
	row := r.db.QueryRowContext(ctx, q,
		job.ID,
		job.DocumentID,
		job.ContentKey,
		job.State,
		job.Attempts,
		job.EnqueuedAt,
		job.NextAttemptAt,
	)
	return scanJob(row)
}

func (r *JobPostgres) FindByID(ctx context.Context, id string) (*model.ValidationJob, error) {
	const q = `SELECT ` + jobColumns + ` FROM validation_jobs WHERE id = $1`
	return scanJob(r.db.QueryRowContext(ctx, q, id))
}

func (r *JobPostgres) ActiveByDocument(ctx context.Context, documentID string) (*model.ValidationJob, error) {
	const q = `
		SELECT ` + jobColumns + `
		FROM validation_jobs
		WHERE document_id = $1 AND state IN ('queued', 'running')
		ORDER BY enqueued_at DESC
		LIMIT 1
	`
	job, err := scanJob(r.db.QueryRowContext(ctx, q, documentID))
	if IsNoRowsError(err) {
		return nil, nil
	}
	return job, err
}

func (r *JobPostgres) LatestByDocument(ctx context.Context, documentID string) (*model.ValidationJob, error) {
	const q = `
		SELECT ` + jobColumns + `
		FROM validation_jobs
		WHERE document_id = $1
		ORDER BY enqueued_at DESC, id DESC
		LIMIT 1
	`
	job, err := scanJob(r.db.QueryRowContext(ctx, q, documentID))
	if IsNoRowsError(err) {
		return nil, nil
	}
	return job, err
}

func (r *JobPostgres) Claim(ctx context.Context, id, workerID string, claimTTL time.Duration) (*model.ValidationJob, error) {
	now := time.Now().UTC()
	const q = `
		UPDATE validation_jobs
		SET state = 'running',
		    worker_id = $2,
		    attempts = attempts + 1,
		    started_at = $3,
		    claim_expires_at = $4
		WHERE id = $1 AND state = 'queued' AND next_attempt_at <= $3
		RETURNING ` + jobColumns
	job, err := scanJob(r.db.QueryRowContext(ctx, q, id, workerID, now, now.Add(claimTTL)))
	if IsNoRowsError(err) {
		return nil, repository.ErrClaimConflict
	}
	return job, err
}

func (r *JobPostgres) SetResolvedStandard(ctx context.Context, id, standardID string) error {
	const q = `UPDATE validation_jobs SET resolved_standard_id = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, standardID)
	return err
}

func (r *JobPostgres) Finish(ctx context.Context, id string, state model.JobState, lastError *string) error {
	const q = `
		UPDATE validation_jobs
		SET state = $2, last_error = $3, finished_at = $4, worker_id = NULL, claim_expires_at = NULL
		WHERE id = $1 AND state = 'running'
	`
	res, err := r.db.ExecContext(ctx, q, id, state, lastError, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *JobPostgres) Retry(ctx context.Context, id, lastError string, nextAttemptAt time.Time) error {
	const q = `
		UPDATE validation_jobs
		SET state = 'queued', last_error = $2, next_attempt_at = $3, worker_id = NULL, claim_expires_at = NULL
		WHERE id = $1 AND state = 'running'
	`
	res, err := r.db.ExecContext(ctx, q, id, lastError, nextAttemptAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *JobPostgres) DueQueued(ctx context.Context, now time.Time, limit int) ([]string, error) {
	const q = `
		SELECT id FROM validation_jobs
		WHERE state = 'queued' AND next_attempt_at <= $1
		ORDER BY next_attempt_at
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *JobPostgres) ReclaimExpired(ctx context.Context, now time.Time) ([]string, error) {
	const q = `
		UPDATE validation_jobs
		SET state = 'queued', worker_id = NULL, claim_expires_at = NULL, next_attempt_at = $1
		WHERE state = 'running' AND claim_expires_at < $1
		RETURNING id
	`
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
