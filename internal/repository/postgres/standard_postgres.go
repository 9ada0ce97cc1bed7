package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

// StandardPostgres is a PostgreSQL implementation of repository.StandardRepository.
// The rule set is stored as a JSONB column; rules keep their declaration order
// because they are serialized as a JSON array.
type StandardPostgres struct {
	db *sql.DB
}

func NewStandardPostgres(db *sql.DB) *StandardPostgres {
	return &StandardPostgres{db: db}
}

var _ repository.StandardRepository = (*StandardPostgres)(nil)

const standardColumns = "id, name, version, predecessor_id, source_document_id, promoted_by, rules, created_at"

func scanStandard(row interface{ Scan(...any) error }) (*model.Standard, error) {
	var s model.Standard
	var rules []byte
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Version,
		&s.PredecessorID,
		&s.SourceDocumentID,
		&s.PromotedBy,
		&rules,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rules, &s.Rules); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	return &s, nil
}

func (r *StandardPostgres) Create(ctx context.Context, std *model.Standard) (*model.Standard, error) {
	rules, err := json.Marshal(std.Rules)
	if err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}

	const q = `
		INSERT INTO standards (id, name, version, predecessor_id, source_document_id, promoted_by, rules, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + standardColumns
	row := r.db.QueryRowContext(ctx, q,
		std.ID,
		std.Name,
		std.Version,
		std.PredecessorID,
		std.SourceDocumentID,
		std.PromotedBy,
		rules,
		std.CreatedAt,
	)
	return scanStandard(row)
}

func (r *StandardPostgres) FindByID(ctx context.Context, id string) (*model.Standard, error) {
	const q = `SELECT ` + standardColumns + ` FROM standards WHERE id = $1`
	return scanStandard(r.db.QueryRowContext(ctx, q, id))
}

func (r *StandardPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Standard], error) {
	const qCount = `SELECT COUNT(*) FROM standards`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + standardColumns + `
		FROM standards
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Standard, 0)
	for rows.Next() {
		s, err := scanStandard(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Standard]{Items: items, Total: total}, nil
}

func (r *StandardPostgres) LatestBySourceDocument(ctx context.Context, documentID string) (*model.Standard, error) {
	const q = `
		SELECT ` + standardColumns + `
		FROM standards
		WHERE source_document_id = $1
		ORDER BY version DESC
		LIMIT 1
	`
	std, err := scanStandard(r.db.QueryRowContext(ctx, q, documentID))
	if IsNoRowsError(err) {
		return nil, nil
	}
	return std, err
}
