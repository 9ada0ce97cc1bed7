package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"standardsapi/internal/model"
	"standardsapi/internal/queue"
	"standardsapi/internal/repository"
)

// Enqueuer creates validation jobs and wakes workers up. When a queued or
// running job already exists for the document, no new row is created: the
// pending job resolves at claim time and the orchestrator's completion check
// re-enqueues if the resolution moved underneath it, so the newer request is
// logically superseded by what is already in flight.
type Enqueuer struct {
	jobs repository.JobRepository
	q    queue.Queue
}

func NewEnqueuer(jobs repository.JobRepository, q queue.Queue) *Enqueuer {
	return &Enqueuer{jobs: jobs, q: q}
}

// EnqueueDocument schedules validation for the document's current content.
func (e *Enqueuer) EnqueueDocument(ctx context.Context, doc *model.Document) (*model.ValidationJob, error) {
	active, err := e.jobs.ActiveByDocument(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return active, nil
	}

	now := time.Now().UTC()
	job := &model.ValidationJob{
		ID:            uuid.New().String(),
		DocumentID:    doc.ID,
		ContentKey:    doc.ContentKey,
		State:         model.JobQueued,
		EnqueuedAt:    now,
		NextAttemptAt: now,
	}
	created, err := e.jobs.Create(ctx, job)
	if err != nil {
		return nil, err
	}

	// The job row is the source of truth; if the wake-up push fails the
	// worker sweeper still finds the job, so delivery errors are not fatal.
	_ = e.q.Enqueue(ctx, created.ID)

	return created, nil
}

// EnqueueAll schedules validation for a batch of documents, returning the
// job ids actually pending afterwards.
func (e *Enqueuer) EnqueueAll(ctx context.Context, docs []model.Document) ([]string, error) {
	ids := make([]string, 0, len(docs))
	for i := range docs {
		job, err := e.EnqueueDocument(ctx, &docs[i])
		if err != nil {
			return ids, err
		}
		ids = append(ids, job.ID)
	}
	return ids, nil
}
