package repository

import (
	"context"

	"standardsapi/internal/model"
)

// AuditRepository defines the append-only event ledger. Ids are assigned by
// the store and strictly increase; rows are never updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, event *model.AuditEvent) (*model.AuditEvent, error)

	// History returns events for an entity with id greater than sinceID,
	// ordered by id ascending, at most limit rows. Passing sinceID 0 starts
	// from the beginning; callers page by feeding the last seen id back in.
	History(ctx context.Context, entityID string, sinceID int64, limit int) ([]model.AuditEvent, error)
}
