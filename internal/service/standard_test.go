package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"standardsapi/internal/audit"
	"standardsapi/internal/model"
	repoMocks "standardsapi/internal/repository/mocks"
	"standardsapi/internal/storage"
	storeMocks "standardsapi/internal/storage/mocks"
	"standardsapi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type standardMocks struct {
	store  *storeMocks.MockStorage
	docs   *repoMocks.MockDocumentRepository
	stds   *repoMocks.MockStandardRepository
	audits *repoMocks.MockAuditRepository
}

func newStandardService(t *testing.T) (StandardService, *standardMocks) {
	t.Helper()
	m := &standardMocks{
		store:  new(storeMocks.MockStorage),
		docs:   new(repoMocks.MockDocumentRepository),
		stds:   new(repoMocks.MockStandardRepository),
		audits: new(repoMocks.MockAuditRepository),
	}
	svc := NewStandardService(m.store, m.docs, m.stds, audit.NewRecorder(m.audits, 0))
	return svc, m
}

func TestStandardService_Promote_FirstVersion(t *testing.T) {
	ctx := context.Background()
	svc, m := newStandardService(t)

	content := testutil.BuildODF(testutil.ODFSpec{
		Metadata: map[string]string{"creator": "QA"},
		Fonts:    []string{"Liberation Serif"},
	})
	key := "blobs/abc"

	m.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{
		ID: "doc-1", Filename: "template.odt", ContentKey: key,
	}, nil)
	m.store.On("Get", ctx, key).
		Return(io.NopCloser(bytes.NewReader(content)), storage.ObjectInfo{Key: key}, nil)
	m.stds.On("LatestBySourceDocument", ctx, "doc-1").Return(nil, nil)
	m.stds.On("Create", ctx, mock.MatchedBy(func(s *model.Standard) bool {
		return s.Version == 1 && s.PredecessorID == nil &&
			s.SourceDocumentID == "doc-1" && len(s.Rules) > 0
	})).Return(&model.Standard{ID: "std-1", Version: 1, Name: "house style"}, nil)
	m.audits.On("Append", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
		return e.Kind == model.EventPromote && e.EntityID == "std-1" && e.Payload["version"] == "1"
	})).Return(&model.AuditEvent{ID: 1}, nil)

	std, err := svc.Promote(ctx, "doc-1", "house style", "steward-1")

	require.NoError(t, err)
	assert.Equal(t, "std-1", std.ID)
	m.stds.AssertExpectations(t)
	m.audits.AssertExpectations(t)
}

func TestStandardService_Promote_NextVersionLinksPredecessor(t *testing.T) {
	ctx := context.Background()
	svc, m := newStandardService(t)

	content := testutil.BuildODF(testutil.ODFSpec{})
	m.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{
		ID: "doc-1", Filename: "template.odt", ContentKey: "blobs/abc",
	}, nil)
	m.store.On("Get", ctx, "blobs/abc").
		Return(io.NopCloser(bytes.NewReader(content)), storage.ObjectInfo{}, nil)
	m.stds.On("LatestBySourceDocument", ctx, "doc-1").
		Return(&model.Standard{ID: "std-1", Version: 3}, nil)
	m.stds.On("Create", ctx, mock.MatchedBy(func(s *model.Standard) bool {
		return s.Version == 4 && s.PredecessorID != nil && *s.PredecessorID == "std-1"
	})).Return(&model.Standard{ID: "std-2", Version: 4}, nil)
	m.audits.On("Append", ctx, mock.Anything).Return(&model.AuditEvent{ID: 1}, nil)

	std, err := svc.Promote(ctx, "doc-1", "", "steward-1")

	require.NoError(t, err)
	assert.Equal(t, 4, std.Version)
}

func TestStandardService_Promote_RejectsMalformedSource(t *testing.T) {
	ctx := context.Background()
	svc, m := newStandardService(t)

	m.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{
		ID: "doc-1", ContentKey: "blobs/abc",
	}, nil)
	m.store.On("Get", ctx, "blobs/abc").
		Return(io.NopCloser(bytes.NewReader([]byte("%PDF-1.7 not a document"))), storage.ObjectInfo{}, nil)

	_, err := svc.Promote(ctx, "doc-1", "", "steward-1")

	assert.ErrorIs(t, err, ErrInvalidSourceDocument)
	m.stds.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
