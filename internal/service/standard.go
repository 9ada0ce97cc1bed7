package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"standardsapi/internal/audit"
	"standardsapi/internal/evaluator"
	"standardsapi/internal/model"
	"standardsapi/internal/odf"
	"standardsapi/internal/repository"
	"standardsapi/internal/storage"
)

// StandardListResult is the service-level DTO for paginated standards.
type StandardListResult struct {
	Items []model.Standard `json:"data"`
	Total int              `json:"total"`
}

// StandardService covers promotion and retrieval of standards.
type StandardService interface {
	// Promote derives a new immutable standard from a stored document. The
	// rule set is a deterministic function of the document bytes; promoting
	// the same document again yields the next version in its lineage.
	Promote(ctx context.Context, sourceDocumentID, name, actor string) (*model.Standard, error)

	Get(ctx context.Context, id string) (*model.Standard, error)

	List(ctx context.Context, limit, offset int) (*StandardListResult, error)
}

type standardService struct {
	store     storage.Storage
	docs      repository.DocumentRepository
	standards repository.StandardRepository
	recorder  *audit.Recorder

	// promoteMu keys a mutex per source document so two concurrent
	// promotions of the same document cannot race on version numbering.
	promoteMu sync.Map
}

func NewStandardService(
	store storage.Storage,
	docs repository.DocumentRepository,
	standards repository.StandardRepository,
	recorder *audit.Recorder,
) StandardService {
	return &standardService{
		store:     store,
		docs:      docs,
		standards: standards,
		recorder:  recorder,
	}
}

func (s *standardService) Promote(ctx context.Context, sourceDocumentID, name, actor string) (*model.Standard, error) {
	if sourceDocumentID == "" {
		return nil, ErrIDRequired
	}

	muAny, _ := s.promoteMu.LoadOrStore(sourceDocumentID, &sync.Mutex{})
	mu := muAny.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	doc, err := s.docs.FindByID(ctx, sourceDocumentID)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rc, _, err := s.store.Get(ctx, doc.ContentKey)
	if err != nil {
		return nil, fmt.Errorf("fetch source content: %w", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read source content: %w", err)
	}

	profile, err := odf.Parse(content)
	if err != nil {
		if errors.Is(err, odf.ErrMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSourceDocument, err)
		}
		return nil, err
	}
	rules := evaluator.DeriveRules(profile)

	if name == "" {
		name = doc.Filename
	}

	version := 1
	var predecessorID *string
	latest, err := s.standards.LatestBySourceDocument(ctx, sourceDocumentID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		version = latest.Version + 1
		predecessorID = &latest.ID
	}

	std := &model.Standard{
		ID:               uuid.New().String(),
		Name:             name,
		Version:          version,
		PredecessorID:    predecessorID,
		SourceDocumentID: sourceDocumentID,
		PromotedBy:       actor,
		Rules:            rules,
		CreatedAt:        time.Now().UTC(),
	}
	created, err := s.standards.Create(ctx, std)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"source_document_id": sourceDocumentID,
		"name":               created.Name,
		"version":            fmt.Sprintf("%d", created.Version),
	}
	if predecessorID != nil {
		payload["predecessor_id"] = *predecessorID
	}
	if _, err := s.recorder.Record(ctx, model.EventPromote, actor, "standard", created.ID, payload); err != nil {
		return nil, err
	}

	return created, nil
}

func (s *standardService) Get(ctx context.Context, id string) (*model.Standard, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	std, err := s.standards.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return std, nil
}

func (s *standardService) List(ctx context.Context, limit, offset int) (*StandardListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.standards.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &StandardListResult{Items: res.Items, Total: res.Total}, nil
}
