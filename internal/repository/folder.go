package repository

import (
	"context"

	"standardsapi/internal/model"
)

// FolderRepository defines persistence for the folder tree. The tree is
// stored as parent-id back-references; traversal helpers walk id references
// so cycle detection stays a plain ancestor walk.
type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) (*model.Folder, error)

	FindByID(ctx context.Context, id string) (*model.Folder, error)

	// Children returns the direct child folders of the given folder.
	Children(ctx context.Context, parentID string) ([]model.Folder, error)

	// UpdateParent re-points the folder's parent edge. Cycle checks happen at
	// the service boundary before this is called.
	UpdateParent(ctx context.Context, id string, parentID *string) error

	// UpdateAssignedStandard sets or clears the folder-level assignment.
	UpdateAssignedStandard(ctx context.Context, id string, standardID *string) error
}
