// Package audit wraps the append-only event ledger. Every mutating operation
// in the system records what happened here; callers must not silently drop
// events, so appends retry transient storage failures with bounded
// exponential backoff before giving up.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

const defaultHistoryLimit = 50

// Recorder appends events to the ledger and reads entity histories.
type Recorder struct {
	repo       repository.AuditRepository
	maxElapsed time.Duration
}

// NewRecorder wraps the given store. maxElapsed bounds the total time spent
// retrying one append; zero picks a sensible default.
func NewRecorder(repo repository.AuditRepository, maxElapsed time.Duration) *Recorder {
	if maxElapsed <= 0 {
		maxElapsed = 30 * time.Second
	}
	return &Recorder{repo: repo, maxElapsed: maxElapsed}
}

// Record appends one event, retrying storage unavailability with exponential
// backoff until maxElapsed runs out.
func (r *Recorder) Record(ctx context.Context, kind model.EventKind, actor, entityType, entityID string, payload map[string]string) (*model.AuditEvent, error) {
	event := &model.AuditEvent{
		Kind:       kind,
		Actor:      actor,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = r.maxElapsed

	var stored *model.AuditEvent
	op := func() error {
		var err error
		stored, err = r.repo.Append(ctx, event)
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("append audit event %s/%s: %w", kind, entityID, err)
	}
	return stored, nil
}

// History returns the events for an entity after sinceID, ordered by id.
// The sequence is restartable: feed the last returned id back in to resume.
func (r *Recorder) History(ctx context.Context, entityID string, sinceID int64, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return r.repo.History(ctx, entityID, sinceID, limit)
}
