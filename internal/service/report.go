package service

import (
	"context"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

// ValidationStatus summarizes where a document stands in the validation
// lifecycle: the latest job, the latest report when one exists, and a single
// status word the API surfaces directly.
type ValidationStatus struct {
	Status string                  `json:"status"`
	Job    *model.ValidationJob    `json:"job,omitempty"`
	Report *model.ComplianceReport `json:"report,omitempty"`
}

// Status words surfaced by ValidationStatus.
const (
	StatusNotValidated = "not-yet-validated"
	StatusPending      = "pending"
	StatusValidated    = "validated"
	StatusSkipped      = "skipped"
	StatusFailed       = "failed"
)

// ReportHistoryResult is the service-level DTO for paginated report history.
type ReportHistoryResult struct {
	Items []model.ComplianceReport `json:"data"`
	Total int                      `json:"total"`
}

// ReportService exposes validation outcomes for documents.
type ReportService interface {
	// Latest returns the most recent compliance report for the document.
	// ErrNotFound means no report has been produced yet.
	Latest(ctx context.Context, documentID string) (*model.ComplianceReport, error)

	// Status combines the latest job and report into one lifecycle view.
	Status(ctx context.Context, documentID string) (*ValidationStatus, error)

	// History pages through the document's retained reports, newest first.
	History(ctx context.Context, documentID string, limit, offset int) (*ReportHistoryResult, error)
}

type reportService struct {
	docs    repository.DocumentRepository
	jobs    repository.JobRepository
	reports repository.ReportRepository
}

func NewReportService(
	docs repository.DocumentRepository,
	jobs repository.JobRepository,
	reports repository.ReportRepository,
) ReportService {
	return &reportService{docs: docs, jobs: jobs, reports: reports}
}

func (s *reportService) Latest(ctx context.Context, documentID string) (*model.ComplianceReport, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	report, err := s.reports.LatestByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotFound
	}
	return report, nil
}

func (s *reportService) Status(ctx context.Context, documentID string) (*ValidationStatus, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.docs.FindByID(ctx, documentID); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	job, err := s.jobs.LatestByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return &ValidationStatus{Status: StatusNotValidated}, nil
	}

	status := &ValidationStatus{Job: job}
	switch job.State {
	case model.JobSucceeded:
		report, err := s.reports.LatestByDocument(ctx, documentID)
		if err != nil {
			return nil, err
		}
		status.Status = StatusValidated
		status.Report = report
	case model.JobSkipped:
		status.Status = StatusSkipped
	case model.JobFailed:
		status.Status = StatusFailed
	default:
		// queued or running, including failed attempts awaiting retry.
		status.Status = StatusPending
	}
	return status, nil
}

func (s *reportService) History(ctx context.Context, documentID string, limit, offset int) (*ReportHistoryResult, error) {
	if documentID == "" {
		return nil, ErrIDRequired
	}
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.reports.ListByDocument(ctx, documentID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &ReportHistoryResult{Items: res.Items, Total: res.Total}, nil
}
