package mocks

import (
	"context"

	"standardsapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, event *model.AuditEvent) (*model.AuditEvent, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditEvent), args.Error(1)
}

func (m *MockAuditRepository) History(ctx context.Context, entityID string, sinceID int64, limit int) ([]model.AuditEvent, error) {
	args := m.Called(ctx, entityID, sinceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEvent), args.Error(1)
}
