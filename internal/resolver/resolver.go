// Package resolver computes which standard governs a document. A document
// override wins unconditionally; otherwise the nearest ancestor folder with
// an assignment applies. Documents with no applicable standard are exempt
// from validation, which the orchestrator records as a skipped job.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"standardsapi/internal/model"
	"standardsapi/internal/repository"
)

// ErrNoStandard means the ancestor walk reached the root without finding an
// assignment and the document has no override.
var ErrNoStandard = errors.New("no applicable standard")

type Resolver struct {
	documents repository.DocumentRepository
	folders   repository.FolderRepository
	standards repository.StandardRepository
}

func New(documents repository.DocumentRepository, folders repository.FolderRepository, standards repository.StandardRepository) *Resolver {
	return &Resolver{documents: documents, folders: folders, standards: standards}
}

// Resolve returns the effective standard for the document, or ErrNoStandard
// when the document is exempt.
func (r *Resolver) Resolve(ctx context.Context, documentID string) (*model.Standard, error) {
	doc, err := r.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}
	return r.ResolveDocument(ctx, doc)
}

// ResolveDocument resolves against an already loaded document row.
func (r *Resolver) ResolveDocument(ctx context.Context, doc *model.Document) (*model.Standard, error) {
	if doc.OverrideStandardID != nil {
		return r.loadStandard(ctx, *doc.OverrideStandardID)
	}

	// Walk parent references from the document's folder toward the root.
	// The visited set guards against a corrupted parent chain; mutations
	// reject cycles, so hitting one here means damaged data, not a bug in
	// the walk.
	visited := map[string]struct{}{}
	folderID := &doc.FolderID
	for folderID != nil {
		if _, seen := visited[*folderID]; seen {
			return nil, fmt.Errorf("folder parent chain contains a cycle at %s", *folderID)
		}
		visited[*folderID] = struct{}{}

		folder, err := r.folders.FindByID(ctx, *folderID)
		if err != nil {
			return nil, fmt.Errorf("load folder %s: %w", *folderID, err)
		}
		if folder.AssignedStandardID != nil {
			return r.loadStandard(ctx, *folder.AssignedStandardID)
		}
		folderID = folder.ParentID
	}

	return nil, ErrNoStandard
}

func (r *Resolver) loadStandard(ctx context.Context, standardID string) (*model.Standard, error) {
	std, err := r.standards.FindByID(ctx, standardID)
	if err != nil {
		return nil, fmt.Errorf("load standard %s: %w", standardID, err)
	}
	return std, nil
}

// AffectedDocuments lists the active documents whose resolution a
// (re)assignment on folderID touches: everything under the folder
// recursively, minus subtrees shadowed by their own assignment.
func (r *Resolver) AffectedDocuments(ctx context.Context, folderID string) ([]model.Document, error) {
	var out []model.Document

	var walk func(id string) error
	walk = func(id string) error {
		docs, err := r.documents.ListActiveByFolder(ctx, id)
		if err != nil {
			return fmt.Errorf("list documents in folder %s: %w", id, err)
		}
		out = append(out, docs...)

		children, err := r.folders.Children(ctx, id)
		if err != nil {
			return fmt.Errorf("list children of folder %s: %w", id, err)
		}
		for _, child := range children {
			if child.AssignedStandardID != nil {
				// Shadowed subtree: its own assignment governs it.
				continue
			}
			if err := walk(child.ID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(folderID); err != nil {
		return nil, err
	}
	return out, nil
}
