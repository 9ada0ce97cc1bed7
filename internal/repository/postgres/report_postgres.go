package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

// ReportPostgres is a PostgreSQL implementation of repository.ReportRepository.
// Findings are stored as a JSONB array, preserving evaluation order.
type ReportPostgres struct {
	db *sql.DB
}

func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

const reportColumns = "id, job_id, document_id, standard_id, standard_version, verdict, findings, generated_at"

func scanReport(row interface{ Scan(...any) error }) (*model.ComplianceReport, error) {
	var rep model.ComplianceReport
	var findings []byte
	if err := row.Scan(
		&rep.ID,
		&rep.JobID,
		&rep.DocumentID,
		&rep.StandardID,
		&rep.StandardVersion,
		&rep.Verdict,
		&findings,
		&rep.GeneratedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(findings, &rep.Findings); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	return &rep, nil
}

func (r *ReportPostgres) Create(ctx context.Context, report *model.ComplianceReport) (*model.ComplianceReport, error) {
	findings, err := json.Marshal(report.Findings)
	if err != nil {
		return nil, fmt.Errorf("encode findings: %w", err)
	}

	const q = `
		INSERT INTO compliance_reports (id, job_id, document_id, standard_id, standard_version, verdict, findings, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + reportColumns
	row := r.db.QueryRowContext(ctx, q,
		report.ID,
		report.JobID,
		report.DocumentID,
		report.StandardID,
		report.StandardVersion,
		report.Verdict,
		findings,
		report.GeneratedAt,
	)
	return scanReport(row)
}

func (r *ReportPostgres) LatestByDocument(ctx context.Context, documentID string) (*model.ComplianceReport, error) {
	const q = `
		SELECT ` + reportColumns + `
		FROM compliance_reports
		WHERE document_id = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`
	rep, err := scanReport(r.db.QueryRowContext(ctx, q, documentID))
	if IsNoRowsError(err) {
		return nil, nil
	}
	return rep, err
}

func (r *ReportPostgres) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) (*repository.PageResult[model.ComplianceReport], error) {
	const qCount = `SELECT COUNT(*) FROM compliance_reports WHERE document_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, documentID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + reportColumns + `
		FROM compliance_reports
		WHERE document_id = $1
		ORDER BY generated_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, documentID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ComplianceReport, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.ComplianceReport]{Items: items, Total: total}, nil
}
