package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
// The id column is a bigserial; Postgres assigns ids monotonically, so
// concurrent appends never conflict and order never changes after append.
type AuditPostgres struct {
	db *sql.DB
}

func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

const auditColumns = "id, kind, actor, entity_type, entity_id, payload, created_at"

func scanAuditEvent(row interface{ Scan(...any) error }) (*model.AuditEvent, error) {
	var e model.AuditEvent
	var payload []byte
	if err := row.Scan(&e.ID, &e.Kind, &e.Actor, &e.EntityType, &e.EntityID, &payload, &e.CreatedAt); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
	}
	return &e, nil
}

func (r *AuditPostgres) Append(ctx context.Context, event *model.AuditEvent) (*model.AuditEvent, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	const q = `
		INSERT INTO audit_events (kind, actor, entity_type, entity_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + auditColumns
	row := r.db.QueryRowContext(ctx, q,
		event.Kind,
		event.Actor,
		event.EntityType,
		event.EntityID,
		payload,
		event.CreatedAt,
	)
	return scanAuditEvent(row)
}

func (r *AuditPostgres) History(ctx context.Context, entityID string, sinceID int64, limit int) ([]model.AuditEvent, error) {
	const q = `
		SELECT ` + auditColumns + `
		FROM audit_events
		WHERE entity_id = $1 AND id > $2
		ORDER BY id
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, q, entityID, sinceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]model.AuditEvent, 0)
	for rows.Next() {
		e, err := scanAuditEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
