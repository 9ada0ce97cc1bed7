package service

import (
	"context"
	"testing"

	"standardsapi/internal/model"
	repoMocks "standardsapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportService(t *testing.T) (ReportService, *repoMocks.MockDocumentRepository, *repoMocks.MockJobRepository, *repoMocks.MockReportRepository) {
	t.Helper()
	docs := new(repoMocks.MockDocumentRepository)
	jobs := new(repoMocks.MockJobRepository)
	reports := new(repoMocks.MockReportRepository)
	return NewReportService(docs, jobs, reports), docs, jobs, reports
}

func TestReportService_Status(t *testing.T) {
	ctx := context.Background()
	doc := &model.Document{ID: "doc-1"}

	tests := []struct {
		name       string
		job        *model.ValidationJob
		report     *model.ComplianceReport
		wantStatus string
	}{
		{
			name:       "never enqueued",
			wantStatus: StatusNotValidated,
		},
		{
			name:       "queued",
			job:        &model.ValidationJob{ID: "j", State: model.JobQueued},
			wantStatus: StatusPending,
		},
		{
			name:       "running",
			job:        &model.ValidationJob{ID: "j", State: model.JobRunning},
			wantStatus: StatusPending,
		},
		{
			name:       "succeeded carries the report",
			job:        &model.ValidationJob{ID: "j", State: model.JobSucceeded},
			report:     &model.ComplianceReport{ID: "r", Verdict: model.VerdictCompliant},
			wantStatus: StatusValidated,
		},
		{
			name:       "skipped",
			job:        &model.ValidationJob{ID: "j", State: model.JobSkipped},
			wantStatus: StatusSkipped,
		},
		{
			name:       "failed",
			job:        &model.ValidationJob{ID: "j", State: model.JobFailed},
			wantStatus: StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, docs, jobs, reports := newReportService(t)
			docs.On("FindByID", ctx, "doc-1").Return(doc, nil)
			if tt.job == nil {
				jobs.On("LatestByDocument", ctx, "doc-1").Return(nil, nil)
			} else {
				jobs.On("LatestByDocument", ctx, "doc-1").Return(tt.job, nil)
			}
			if tt.report != nil {
				reports.On("LatestByDocument", ctx, "doc-1").Return(tt.report, nil)
			}

			status, err := svc.Status(ctx, "doc-1")

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status.Status)
			if tt.report != nil {
				require.NotNil(t, status.Report)
				assert.Equal(t, tt.report.ID, status.Report.ID)
			}
		})
	}
}

func TestReportService_Latest_NoReportYet(t *testing.T) {
	ctx := context.Background()
	svc, _, _, reports := newReportService(t)
	reports.On("LatestByDocument", ctx, "doc-1").Return(nil, nil)

	_, err := svc.Latest(ctx, "doc-1")

	assert.ErrorIs(t, err, ErrNotFound)
}
