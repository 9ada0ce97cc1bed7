package mocks

import (
	"context"

	"standardsapi/internal/model"
	"standardsapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Create(ctx context.Context, name string, parentID *string, actor string) (*model.Folder, error) {
	args := m.Called(ctx, name, parentID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Get(ctx context.Context, id string) (*service.FolderTree, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FolderTree), args.Error(1)
}

func (m *MockFolderService) Assign(ctx context.Context, folderID, standardID, actor string) (*service.AssignResult, error) {
	args := m.Called(ctx, folderID, standardID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AssignResult), args.Error(1)
}

func (m *MockFolderService) Move(ctx context.Context, folderID string, newParentID *string, actor string) (*service.AssignResult, error) {
	args := m.Called(ctx, folderID, newParentID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AssignResult), args.Error(1)
}
