package mocks

import (
	"context"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *model.ComplianceReport) (*model.ComplianceReport, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceReport), args.Error(1)
}

func (m *MockReportRepository) LatestByDocument(ctx context.Context, documentID string) (*model.ComplianceReport, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceReport), args.Error(1)
}

func (m *MockReportRepository) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) (*repository.PageResult[model.ComplianceReport], error) {
	args := m.Called(ctx, documentID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ComplianceReport]), args.Error(1)
}
