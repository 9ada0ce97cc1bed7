package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"standardsapi/internal/audit"
	"standardsapi/internal/model"
	"standardsapi/internal/repository"
	"standardsapi/internal/storage"
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// UploadResult pairs the stored document with the validation job that was
// enqueued for it.
type UploadResult struct {
	Document *model.Document      `json:"document"`
	Job      *model.ValidationJob `json:"job"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the content in the blob store under its content hash,
	// records the document, appends an upload event, and enqueues validation.
	Upload(ctx context.Context, r io.Reader, folderID, filename, contentType string, actor string) (*UploadResult, error)

	Get(ctx context.Context, id string) (*model.Document, error)

	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// SetOverride pins the document to a standard (or clears the pin when
	// standardID is nil), appends the audit event, and re-enqueues.
	SetOverride(ctx context.Context, id string, standardID *string, actor string) (*model.ValidationJob, error)

	// Move atomically re-homes the document into another folder, appends the
	// audit event, and re-enqueues that one document.
	Move(ctx context.Context, id, folderID, actor string) (*model.ValidationJob, error)

	// DownloadURL returns a time-limited presigned link to the document's
	// current content, so the bytes never stream through the API process.
	DownloadURL(ctx context.Context, id string) (string, error)
}

// downloadURLExpiry bounds how long a presigned content link stays usable.
const downloadURLExpiry = 15 * time.Minute

type documentService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	folders   repository.FolderRepository
	standards repository.StandardRepository
	enqueuer  *Enqueuer
	recorder  *audit.Recorder
}

func NewDocumentService(
	store storage.Storage,
	docs repository.DocumentRepository,
	folders repository.FolderRepository,
	standards repository.StandardRepository,
	enqueuer *Enqueuer,
	recorder *audit.Recorder,
) DocumentService {
	return &documentService{
		store:     store,
		docs:      docs,
		folders:   folders,
		standards: standards,
		enqueuer:  enqueuer,
		recorder:  recorder,
	}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, folderID, filename, contentType string, actor string) (*UploadResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if _, err := s.folders.FindByID(ctx, folderID); err != nil {
		return nil, fmt.Errorf("%w: folder %s", ErrNotFound, folderID)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	key := storage.ContentKey(content)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: contentType,
		Metadata:    map[string]string{"original-filename": filename},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:          uuid.New().String(),
		FolderID:    folderID,
		Filename:    filename,
		ContentKey:  key,
		Size:        int64(len(content)),
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	if _, err := s.recorder.Record(ctx, model.EventUpload, actor, "document", stored.ID, map[string]string{
		"folder_id":   folderID,
		"filename":    filename,
		"content_key": key,
	}); err != nil {
		return nil, err
	}

	job, err := s.enqueuer.EnqueueDocument(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("enqueue validation: %w", err)
	}

	return &UploadResult{Document: stored, Job: job}, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.docs.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) SetOverride(ctx context.Context, id string, standardID *string, actor string) (*model.ValidationJob, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if standardID != nil {
		if _, err := s.standards.FindByID(ctx, *standardID); err != nil {
			return nil, fmt.Errorf("%w: standard %s", ErrNotFound, *standardID)
		}
	}

	if err := s.docs.UpdateOverride(ctx, id, standardID); err != nil {
		return nil, err
	}

	kind := model.EventOverrideSet
	payload := map[string]string{}
	if standardID != nil {
		payload["standard_id"] = *standardID
	} else {
		kind = model.EventOverrideClear
	}
	if _, err := s.recorder.Record(ctx, kind, actor, "document", id, payload); err != nil {
		return nil, err
	}

	doc.OverrideStandardID = standardID
	return s.enqueuer.EnqueueDocument(ctx, doc)
}

func (s *documentService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, doc.ContentKey, downloadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return u, nil
}

func (s *documentService) Move(ctx context.Context, id, folderID, actor string) (*model.ValidationJob, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.folders.FindByID(ctx, folderID); err != nil {
		return nil, fmt.Errorf("%w: folder %s", ErrNotFound, folderID)
	}

	if err := s.docs.UpdateFolder(ctx, id, folderID); err != nil {
		return nil, err
	}

	if _, err := s.recorder.Record(ctx, model.EventMove, actor, "document", id, map[string]string{
		"from_folder_id": doc.FolderID,
		"to_folder_id":   folderID,
	}); err != nil {
		return nil, err
	}

	doc.FolderID = folderID
	return s.enqueuer.EnqueueDocument(ctx, doc)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
