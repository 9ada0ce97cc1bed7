package mocks

import (
	"context"

	"standardsapi/internal/model"
	"standardsapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockStandardService struct {
	mock.Mock
}

func (m *MockStandardService) Promote(ctx context.Context, sourceDocumentID, name, actor string) (*model.Standard, error) {
	args := m.Called(ctx, sourceDocumentID, name, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Standard), args.Error(1)
}

func (m *MockStandardService) Get(ctx context.Context, id string) (*model.Standard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Standard), args.Error(1)
}

func (m *MockStandardService) List(ctx context.Context, limit, offset int) (*service.StandardListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StandardListResult), args.Error(1)
}
