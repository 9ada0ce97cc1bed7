package mocks

import (
	"context"

	"standardsapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockFolderRepository struct {
	mock.Mock
}

func (m *MockFolderRepository) Create(ctx context.Context, folder *model.Folder) (*model.Folder, error) {
	args := m.Called(ctx, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) FindByID(ctx context.Context, id string) (*model.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderRepository) Children(ctx context.Context, parentID string) ([]model.Folder, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderRepository) UpdateParent(ctx context.Context, id string, parentID *string) error {
	args := m.Called(ctx, id, parentID)
	return args.Error(0)
}

func (m *MockFolderRepository) UpdateAssignedStandard(ctx context.Context, id string, standardID *string) error {
	args := m.Called(ctx, id, standardID)
	return args.Error(0)
}
