package repository

import (
	"context"

	"standardsapi/internal/model"
)

// StandardRepository defines persistence for the immutable standard registry.
// Standards are insert-only; there are no update operations.
type StandardRepository interface {
	Create(ctx context.Context, std *model.Standard) (*model.Standard, error)

	FindByID(ctx context.Context, id string) (*model.Standard, error)

	List(ctx context.Context, pq PageQuery) (*PageResult[model.Standard], error)

	// LatestBySourceDocument returns the newest standard promoted from the
	// given document, or (nil, nil) when the document was never promoted.
	// Used to chain lineage on re-promotion.
	LatestBySourceDocument(ctx context.Context, documentID string) (*model.Standard, error)
}
