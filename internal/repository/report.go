package repository

import (
	"context"

	"standardsapi/internal/model"
)

// ReportRepository defines persistence for compliance reports. Reports are
// insert-only and retained historically.
type ReportRepository interface {
	Create(ctx context.Context, report *model.ComplianceReport) (*model.ComplianceReport, error)

	// LatestByDocument returns the most recent report by generated-at for a
	// document, or (nil, nil) when no report exists yet.
	LatestByDocument(ctx context.Context, documentID string) (*model.ComplianceReport, error)

	// ListByDocument returns the full report history for a document, newest
	// first.
	ListByDocument(ctx context.Context, documentID string, pq PageQuery) (*PageResult[model.ComplianceReport], error)
}
