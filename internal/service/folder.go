package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"standardsapi/internal/audit"
	"standardsapi/internal/model"
	"standardsapi/internal/repository"
	"standardsapi/internal/resolver"
)

// FolderTree is the service-level DTO combining a folder with its direct
// children and documents.
type FolderTree struct {
	Folder    *model.Folder    `json:"folder"`
	Children  []model.Folder   `json:"children"`
	Documents []model.Document `json:"documents"`
}

// AssignResult reports a folder assignment with the jobs it re-enqueued.
type AssignResult struct {
	Folder *model.Folder `json:"folder"`
	JobIDs []string      `json:"job_ids"`
}

// FolderService defines the use cases for the folder tree.
type FolderService interface {
	Create(ctx context.Context, name string, parentID *string, actor string) (*model.Folder, error)

	Get(ctx context.Context, id string) (*FolderTree, error)

	// Assign sets the folder's standard assignment, appends the audit event,
	// and re-enqueues every active document in the subtree that is not
	// shadowed by a deeper assignment.
	Assign(ctx context.Context, folderID, standardID, actor string) (*AssignResult, error)

	// Move re-parents a folder. A move onto the folder's own descendant (or
	// itself) is rejected with ErrCycleRejected and leaves the tree unchanged.
	Move(ctx context.Context, folderID string, newParentID *string, actor string) (*AssignResult, error)
}

type folderService struct {
	folders  repository.FolderRepository
	docs     repository.DocumentRepository
	res      *resolver.Resolver
	enqueuer *Enqueuer
	recorder *audit.Recorder

	// treeMu serializes tree mutations so concurrent reassignments cannot
	// compute inconsistent re-enqueue sets.
	treeMu sync.Mutex
}

func NewFolderService(
	folders repository.FolderRepository,
	docs repository.DocumentRepository,
	res *resolver.Resolver,
	enqueuer *Enqueuer,
	recorder *audit.Recorder,
) FolderService {
	return &folderService{
		folders:  folders,
		docs:     docs,
		res:      res,
		enqueuer: enqueuer,
		recorder: recorder,
	}
}

func (s *folderService) Create(ctx context.Context, name string, parentID *string, actor string) (*model.Folder, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: folder name", ErrIDRequired)
	}
	if parentID != nil {
		if _, err := s.folders.FindByID(ctx, *parentID); err != nil {
			return nil, fmt.Errorf("%w: parent folder %s", ErrNotFound, *parentID)
		}
	}

	folder := &model.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	return s.folders.Create(ctx, folder)
}

func (s *folderService) Get(ctx context.Context, id string) (*FolderTree, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	folder, err := s.folders.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	children, err := s.folders.Children(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.ListActiveByFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	return &FolderTree{Folder: folder, Children: children, Documents: docs}, nil
}

func (s *folderService) Assign(ctx context.Context, folderID, standardID, actor string) (*AssignResult, error) {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	kind := model.EventAssign
	payload := map[string]string{"standard_id": standardID}
	if folder.AssignedStandardID != nil {
		kind = model.EventReassign
		payload["previous_standard_id"] = *folder.AssignedStandardID
	}

	if err := s.folders.UpdateAssignedStandard(ctx, folderID, &standardID); err != nil {
		return nil, err
	}
	if _, err := s.recorder.Record(ctx, kind, actor, "folder", folderID, payload); err != nil {
		return nil, err
	}

	// Historical reports stay as they are; only future resolutions change,
	// so the affected subtree is simply revalidated.
	affected, err := s.res.AffectedDocuments(ctx, folderID)
	if err != nil {
		return nil, err
	}
	jobIDs, err := s.enqueuer.EnqueueAll(ctx, affected)
	if err != nil {
		return nil, err
	}

	folder.AssignedStandardID = &standardID
	return &AssignResult{Folder: folder, JobIDs: jobIDs}, nil
}

func (s *folderService) Move(ctx context.Context, folderID string, newParentID *string, actor string) (*AssignResult, error) {
	s.treeMu.Lock()
	defer s.treeMu.Unlock()

	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if newParentID != nil {
		if err := s.checkNoCycle(ctx, folderID, *newParentID); err != nil {
			return nil, err
		}
	}

	if err := s.folders.UpdateParent(ctx, folderID, newParentID); err != nil {
		return nil, err
	}

	payload := map[string]string{}
	if folder.ParentID != nil {
		payload["from_parent_id"] = *folder.ParentID
	}
	if newParentID != nil {
		payload["to_parent_id"] = *newParentID
	}
	if _, err := s.recorder.Record(ctx, model.EventMove, actor, "folder", folderID, payload); err != nil {
		return nil, err
	}

	result := &AssignResult{Folder: folder}
	// A subtree with its own assignment keeps resolving the same way no
	// matter where it hangs; only unshadowed subtrees need revalidation.
	if folder.AssignedStandardID == nil {
		affected, err := s.res.AffectedDocuments(ctx, folderID)
		if err != nil {
			return nil, err
		}
		result.JobIDs, err = s.enqueuer.EnqueueAll(ctx, affected)
		if err != nil {
			return nil, err
		}
	}

	folder.ParentID = newParentID
	return result, nil
}

// checkNoCycle walks the ancestor chain of the proposed parent; finding the
// folder itself there means the move would create a cycle.
func (s *folderService) checkNoCycle(ctx context.Context, folderID, newParentID string) error {
	current := &newParentID
	visited := map[string]struct{}{}
	for current != nil {
		if *current == folderID {
			return ErrCycleRejected
		}
		if _, seen := visited[*current]; seen {
			return ErrCycleRejected
		}
		visited[*current] = struct{}{}

		parent, err := s.folders.FindByID(ctx, *current)
		if err != nil {
			if isNoRows(err) {
				return fmt.Errorf("%w: parent folder %s", ErrNotFound, *current)
			}
			return err
		}
		current = parent.ParentID
	}
	return nil
}
