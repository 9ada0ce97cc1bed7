package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"standardsapi/internal/audit"
	"standardsapi/internal/model"
	queueMocks "standardsapi/internal/queue/mocks"
	repoMocks "standardsapi/internal/repository/mocks"
	"standardsapi/internal/storage"
	storeMocks "standardsapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type documentMocks struct {
	store   *storeMocks.MockStorage
	docs    *repoMocks.MockDocumentRepository
	folders *repoMocks.MockFolderRepository
	stds    *repoMocks.MockStandardRepository
	jobs    *repoMocks.MockJobRepository
	audits  *repoMocks.MockAuditRepository
	queue   *queueMocks.MockQueue
}

func newDocumentService(t *testing.T) (DocumentService, *documentMocks) {
	t.Helper()
	m := &documentMocks{
		store:   new(storeMocks.MockStorage),
		docs:    new(repoMocks.MockDocumentRepository),
		folders: new(repoMocks.MockFolderRepository),
		stds:    new(repoMocks.MockStandardRepository),
		jobs:    new(repoMocks.MockJobRepository),
		audits:  new(repoMocks.MockAuditRepository),
		queue:   new(queueMocks.MockQueue),
	}
	svc := NewDocumentService(
		m.store, m.docs, m.folders, m.stds,
		NewEnqueuer(m.jobs, m.queue),
		audit.NewRecorder(m.audits, 0),
	)
	return svc, m
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(m *documentMocks) io.Reader
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			setupMocks: func(m *documentMocks) io.Reader {
				m.folders.On("FindByID", ctx, "folder-1").Return(&model.Folder{ID: "folder-1"}, nil)

				key := storage.ContentKey([]byte("hello world"))
				m.store.On("Put", ctx, key, mock.Anything, storage.PutObjectOptions{
					Size:        11,
					ContentType: "application/vnd.oasis.opendocument.text",
					Metadata:    map[string]string{"original-filename": "report.odt"},
				}).Return(storage.ObjectInfo{Key: key, Size: 11}, nil)

				m.docs.On("Create", ctx, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.FolderID == "folder-1" && doc.ContentKey == key && doc.Filename == "report.odt"
				})).Return(&model.Document{ID: "doc-1", FolderID: "folder-1", ContentKey: key}, nil)

				m.audits.On("Append", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
					return e.Kind == model.EventUpload && e.EntityID == "doc-1" && e.Actor == "alice"
				})).Return(&model.AuditEvent{ID: 1}, nil)

				m.jobs.On("ActiveByDocument", ctx, "doc-1").Return(nil, nil)
				m.jobs.On("Create", ctx, mock.MatchedBy(func(j *model.ValidationJob) bool {
					return j.DocumentID == "doc-1" && j.State == model.JobQueued && j.ContentKey == key
				})).Return(&model.ValidationJob{ID: "job-1", DocumentID: "doc-1", State: model.JobQueued}, nil)
				m.queue.On("Enqueue", ctx, "job-1").Return(nil)

				return strings.NewReader("hello world")
			},
		},
		{
			name: "validation error - nil reader",
			setupMocks: func(m *documentMocks) io.Reader {
				return nil
			},
			wantErr: ErrReaderNil,
		},
		{
			name: "unknown folder",
			setupMocks: func(m *documentMocks) io.Reader {
				m.folders.On("FindByID", ctx, "folder-1").Return(nil, sql.ErrNoRows)
				return strings.NewReader("hello")
			},
			wantErr: ErrNotFound,
		},
		{
			name: "storage error",
			setupMocks: func(m *documentMocks) io.Reader {
				m.folders.On("FindByID", ctx, "folder-1").Return(&model.Folder{ID: "folder-1"}, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return strings.NewReader("hello")
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name: "queue push failure is not fatal",
			setupMocks: func(m *documentMocks) io.Reader {
				m.folders.On("FindByID", ctx, "folder-1").Return(&model.Folder{ID: "folder-1"}, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				m.docs.On("Create", ctx, mock.Anything).
					Return(&model.Document{ID: "doc-1", FolderID: "folder-1"}, nil)
				m.audits.On("Append", ctx, mock.Anything).Return(&model.AuditEvent{ID: 1}, nil)
				m.jobs.On("ActiveByDocument", ctx, "doc-1").Return(nil, nil)
				m.jobs.On("Create", ctx, mock.Anything).
					Return(&model.ValidationJob{ID: "job-1", State: model.JobQueued}, nil)
				// The job row exists; the sweeper redelivers when Redis is down.
				m.queue.On("Enqueue", ctx, "job-1").Return(errors.New("redis down"))
				return strings.NewReader("hello")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newDocumentService(t)
			r := tt.setupMocks(m)

			res, err := svc.Upload(ctx, r, "folder-1", "report.odt", "application/vnd.oasis.opendocument.text", "alice")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, "doc-1", res.Document.ID)
			assert.Equal(t, "job-1", res.Job.ID)
			m.docs.AssertExpectations(t)
			m.jobs.AssertExpectations(t)
			m.audits.AssertExpectations(t)
		})
	}
}

func TestDocumentService_SetOverride(t *testing.T) {
	ctx := context.Background()

	t.Run("set override validates the standard and re-enqueues", func(t *testing.T) {
		svc, m := newDocumentService(t)
		std := "std-1"

		m.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", ContentKey: "blobs/abc"}, nil)
		m.stds.On("FindByID", ctx, "std-1").Return(&model.Standard{ID: "std-1"}, nil)
		m.docs.On("UpdateOverride", ctx, "doc-1", &std).Return(nil)
		m.audits.On("Append", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
			return e.Kind == model.EventOverrideSet && e.Payload["standard_id"] == "std-1"
		})).Return(&model.AuditEvent{ID: 1}, nil)
		m.jobs.On("ActiveByDocument", ctx, "doc-1").Return(nil, nil)
		m.jobs.On("Create", ctx, mock.Anything).Return(&model.ValidationJob{ID: "job-1"}, nil)
		m.queue.On("Enqueue", ctx, "job-1").Return(nil)

		job, err := svc.SetOverride(ctx, "doc-1", &std, "alice")

		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
	})

	t.Run("clear override records override-clear", func(t *testing.T) {
		svc, m := newDocumentService(t)

		m.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		m.docs.On("UpdateOverride", ctx, "doc-1", (*string)(nil)).Return(nil)
		m.audits.On("Append", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
			return e.Kind == model.EventOverrideClear
		})).Return(&model.AuditEvent{ID: 2}, nil)
		m.jobs.On("ActiveByDocument", ctx, "doc-1").Return(nil, nil)
		m.jobs.On("Create", ctx, mock.Anything).Return(&model.ValidationJob{ID: "job-2"}, nil)
		m.queue.On("Enqueue", ctx, "job-2").Return(nil)

		_, err := svc.SetOverride(ctx, "doc-1", nil, "alice")

		require.NoError(t, err)
		m.audits.AssertExpectations(t)
	})

	t.Run("unknown standard is rejected", func(t *testing.T) {
		svc, m := newDocumentService(t)
		std := "nope"

		m.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1"}, nil)
		m.stds.On("FindByID", ctx, "nope").Return(nil, sql.ErrNoRows)

		_, err := svc.SetOverride(ctx, "doc-1", &std, "alice")

		assert.ErrorIs(t, err, ErrNotFound)
		m.docs.AssertNotCalled(t, "UpdateOverride", ctx, "doc-1", &std)
	})
}

func TestDocumentService_Move(t *testing.T) {
	ctx := context.Background()
	svc, m := newDocumentService(t)

	m.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", FolderID: "old"}, nil)
	m.folders.On("FindByID", ctx, "new").Return(&model.Folder{ID: "new"}, nil)
	m.docs.On("UpdateFolder", ctx, "doc-1", "new").Return(nil)
	m.audits.On("Append", ctx, mock.MatchedBy(func(e *model.AuditEvent) bool {
		return e.Kind == model.EventMove &&
			e.Payload["from_folder_id"] == "old" && e.Payload["to_folder_id"] == "new"
	})).Return(&model.AuditEvent{ID: 1}, nil)
	m.jobs.On("ActiveByDocument", ctx, "doc-1").Return(nil, nil)
	m.jobs.On("Create", ctx, mock.Anything).Return(&model.ValidationJob{ID: "job-1"}, nil)
	m.queue.On("Enqueue", ctx, "job-1").Return(nil)

	job, err := svc.Move(ctx, "doc-1", "new", "alice")

	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	m.audits.AssertExpectations(t)
}

func TestEnqueuer_ReusesActiveJob(t *testing.T) {
	ctx := context.Background()
	jobs := new(repoMocks.MockJobRepository)
	q := new(queueMocks.MockQueue)

	jobs.On("ActiveByDocument", ctx, "doc-1").
		Return(&model.ValidationJob{ID: "job-live", State: model.JobRunning}, nil)

	e := NewEnqueuer(jobs, q)
	job, err := e.EnqueueDocument(ctx, &model.Document{ID: "doc-1"})

	require.NoError(t, err)
	assert.Equal(t, "job-live", job.ID)
	jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	q.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns the current content key", func(t *testing.T) {
		svc, m := newDocumentService(t)

		m.docs.On("FindByID", ctx, "doc-1").
			Return(&model.Document{ID: "doc-1", ContentKey: "blobs/abc"}, nil)
		m.store.On("PresignGet", ctx, "blobs/abc", downloadURLExpiry).
			Return("https://blobs.example/abc?sig=xyz", nil)

		u, err := svc.DownloadURL(ctx, "doc-1")

		require.NoError(t, err)
		assert.Equal(t, "https://blobs.example/abc?sig=xyz", u)
		m.store.AssertExpectations(t)
	})

	t.Run("unknown document", func(t *testing.T) {
		svc, m := newDocumentService(t)

		m.docs.On("FindByID", ctx, "doc-x").Return(nil, sql.ErrNoRows)

		_, err := svc.DownloadURL(ctx, "doc-x")

		assert.ErrorIs(t, err, ErrNotFound)
		m.store.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
	})
}
