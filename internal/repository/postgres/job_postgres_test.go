package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func jobRows(job *model.ValidationJob) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "document_id", "content_key", "resolved_standard_id", "state", "attempts",
		"worker_id", "enqueued_at", "next_attempt_at", "claim_expires_at", "started_at", "finished_at", "last_error",
	}).AddRow(
		job.ID, job.DocumentID, job.ContentKey, job.ResolvedStandardID, job.State, job.Attempts,
		job.WorkerID, job.EnqueuedAt, job.NextAttemptAt, job.ClaimExpiresAt, job.StartedAt, job.FinishedAt, job.LastError,
	)
}

func TestJobPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewJobPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	job := &model.ValidationJob{
		ID:            "job-1",
		DocumentID:    "doc-1",
		ContentKey:    "blobs/abc",
		State:         model.JobQueued,
		EnqueuedAt:    now,
		NextAttemptAt: now,
	}

	mock.ExpectQuery("INSERT INTO validation_jobs").
		WithArgs(job.ID, job.DocumentID, job.ContentKey, job.State, job.Attempts, job.EnqueuedAt, job.NextAttemptAt).
		WillReturnRows(jobRows(job))

	result, err := repo.Create(ctx, job)

	assert.NoError(t, err)
	assert.Equal(t, "job-1", result.ID)
	assert.Equal(t, model.JobQueued, result.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobPostgres_Claim(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewJobPostgres(db)
	ctx := context.Background()

	t.Run("wins the claim", func(t *testing.T) {
		worker := "w1"
		claimed := &model.ValidationJob{
			ID:            "job-1",
			DocumentID:    "doc-1",
			ContentKey:    "blobs/abc",
			State:         model.JobRunning,
			Attempts:      1,
			WorkerID:      &worker,
			EnqueuedAt:    time.Now().UTC(),
			NextAttemptAt: time.Now().UTC(),
		}

		mock.ExpectQuery("UPDATE validation_jobs").
			WithArgs("job-1", "w1", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(jobRows(claimed))

		job, err := repo.Claim(ctx, "job-1", "w1", time.Minute)

		assert.NoError(t, err)
		assert.Equal(t, model.JobRunning, job.State)
		assert.Equal(t, 1, job.Attempts)
	})

	t.Run("loses the claim race", func(t *testing.T) {
		mock.ExpectQuery("UPDATE validation_jobs").
			WithArgs("job-1", "w2", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Claim(ctx, "job-1", "w2", time.Minute)

		assert.ErrorIs(t, err, repository.ErrClaimConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobPostgres_ActiveByDocument_NoneIsNotAnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewJobPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM validation_jobs").
		WithArgs("doc-1").
		WillReturnError(sql.ErrNoRows)

	job, err := repo.ActiveByDocument(context.Background(), "doc-1")

	assert.NoError(t, err)
	assert.Nil(t, job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobPostgres_Finish(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewJobPostgres(db)
	ctx := context.Background()

	t.Run("running job finishes", func(t *testing.T) {
		mock.ExpectExec("UPDATE validation_jobs").
			WithArgs("job-1", model.JobSucceeded, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Finish(ctx, "job-1", model.JobSucceeded, nil)

		assert.NoError(t, err)
	})

	t.Run("non-running job is rejected", func(t *testing.T) {
		mock.ExpectExec("UPDATE validation_jobs").
			WithArgs("job-1", model.JobSucceeded, nil, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Finish(ctx, "job-1", model.JobSucceeded, nil)

		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobPostgres_ReclaimExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewJobPostgres(db)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE validation_jobs").
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("job-1").AddRow("job-2"))

	ids, err := repo.ReclaimExpired(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, []string{"job-1", "job-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
