package mocks

import (
	"context"

	"standardsapi/internal/model"
	"standardsapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Latest(ctx context.Context, documentID string) (*model.ComplianceReport, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ComplianceReport), args.Error(1)
}

func (m *MockReportService) Status(ctx context.Context, documentID string) (*service.ValidationStatus, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ValidationStatus), args.Error(1)
}

func (m *MockReportService) History(ctx context.Context, documentID string, limit, offset int) (*service.ReportHistoryResult, error) {
	args := m.Called(ctx, documentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportHistoryResult), args.Error(1)
}
