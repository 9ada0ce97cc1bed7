package mocks

import (
	"context"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockStandardRepository struct {
	mock.Mock
}

func (m *MockStandardRepository) Create(ctx context.Context, std *model.Standard) (*model.Standard, error) {
	args := m.Called(ctx, std)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Standard), args.Error(1)
}

func (m *MockStandardRepository) FindByID(ctx context.Context, id string) (*model.Standard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Standard), args.Error(1)
}

func (m *MockStandardRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Standard], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Standard]), args.Error(1)
}

func (m *MockStandardRepository) LatestBySourceDocument(ctx context.Context, documentID string) (*model.Standard, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Standard), args.Error(1)
}
