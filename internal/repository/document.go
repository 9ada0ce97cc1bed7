package repository

import (
	"context"

	"standardsapi/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries
// only. No business logic here.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	FindByID(ctx context.Context, id string) (*model.Document, error)

	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// ListActiveByFolder returns the non-archived documents directly inside
	// one folder. Subtree walks combine this with FolderRepository.Children.
	ListActiveByFolder(ctx context.Context, folderID string) ([]model.Document, error)

	// UpdateFolder moves the document's membership edge.
	UpdateFolder(ctx context.Context, id, folderID string) error

	// UpdateOverride sets or clears the document-level standard pin.
	UpdateOverride(ctx context.Context, id string, standardID *string) error
}
