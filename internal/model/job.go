package model

import "time"

// JobState is the lifecycle state of a validation job.
// Transitions: queued -> running -> {succeeded, failed, skipped},
// plus failed -> queued while the retry budget lasts.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
	JobSkipped   JobState = "skipped"
)

// Terminal reports whether the state admits no further transitions.
// A failed job is terminal only once its retry budget is exhausted, which the
// orchestrator decides; the state alone cannot tell, so failed is listed here
// for jobs the orchestrator has finished with.
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobSkipped
}

// ValidationJob tracks one asynchronous validation run. ContentKey snapshots
// the exact bytes under validation at enqueue time, so a document edited
// mid-flight does not change what the running job evaluates.
// ResolvedStandardID is filled when the worker resolves the document at claim
// time and stays nil for skipped jobs.
type ValidationJob struct {
	ID                 string     `json:"id"`
	DocumentID         string     `json:"document_id"`
	ContentKey         string     `json:"content_key"`
	ResolvedStandardID *string    `json:"resolved_standard_id,omitempty"`
	State              JobState   `json:"state"`
	Attempts           int        `json:"attempts"`
	WorkerID           *string    `json:"worker_id,omitempty"`
	EnqueuedAt         time.Time  `json:"enqueued_at"`
	NextAttemptAt      time.Time  `json:"next_attempt_at"`
	ClaimExpiresAt     *time.Time `json:"claim_expires_at,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
	LastError          *string    `json:"last_error,omitempty"`
}
