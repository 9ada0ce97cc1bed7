package resolver

import (
	"context"
	"testing"

	"standardsapi/internal/model"
	repoMocks "standardsapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// Tree under test: root (no assignment) -> folder B (assigned S1) -> doc D.
func TestResolve_NearestAncestorWins(t *testing.T) {
	ctx := context.Background()
	mDocs := new(repoMocks.MockDocumentRepository)
	mFolders := new(repoMocks.MockFolderRepository)
	mStds := new(repoMocks.MockStandardRepository)

	mDocs.On("FindByID", ctx, "doc-d").Return(&model.Document{ID: "doc-d", FolderID: "folder-b"}, nil)
	mFolders.On("FindByID", ctx, "folder-b").Return(&model.Folder{
		ID: "folder-b", ParentID: strPtr("root"), AssignedStandardID: strPtr("s1"),
	}, nil)
	mStds.On("FindByID", ctx, "s1").Return(&model.Standard{ID: "s1"}, nil)

	r := New(mDocs, mFolders, mStds)
	std, err := r.Resolve(ctx, "doc-d")

	require.NoError(t, err)
	assert.Equal(t, "s1", std.ID)
	mFolders.AssertNotCalled(t, "FindByID", ctx, "root")
}

func TestResolve_WalksToAncestor(t *testing.T) {
	ctx := context.Background()
	mDocs := new(repoMocks.MockDocumentRepository)
	mFolders := new(repoMocks.MockFolderRepository)
	mStds := new(repoMocks.MockStandardRepository)

	mDocs.On("FindByID", ctx, "doc-d").Return(&model.Document{ID: "doc-d", FolderID: "leaf"}, nil)
	mFolders.On("FindByID", ctx, "leaf").Return(&model.Folder{ID: "leaf", ParentID: strPtr("mid")}, nil)
	mFolders.On("FindByID", ctx, "mid").Return(&model.Folder{
		ID: "mid", ParentID: strPtr("root"), AssignedStandardID: strPtr("s1"),
	}, nil)
	mStds.On("FindByID", ctx, "s1").Return(&model.Standard{ID: "s1"}, nil)

	r := New(mDocs, mFolders, mStds)
	std, err := r.Resolve(ctx, "doc-d")

	require.NoError(t, err)
	assert.Equal(t, "s1", std.ID)
}

func TestResolve_OverrideWinsOverAncestors(t *testing.T) {
	ctx := context.Background()
	mDocs := new(repoMocks.MockDocumentRepository)
	mFolders := new(repoMocks.MockFolderRepository)
	mStds := new(repoMocks.MockStandardRepository)

	mDocs.On("FindByID", ctx, "doc-d").Return(&model.Document{
		ID: "doc-d", FolderID: "folder-b", OverrideStandardID: strPtr("s2"),
	}, nil)
	mStds.On("FindByID", ctx, "s2").Return(&model.Standard{ID: "s2"}, nil)

	r := New(mDocs, mFolders, mStds)
	std, err := r.Resolve(ctx, "doc-d")

	require.NoError(t, err)
	assert.Equal(t, "s2", std.ID)
	// The folder tree is never consulted when an override is set.
	mFolders.AssertNotCalled(t, "FindByID")
}

func TestResolve_NoAssignmentAnywhere(t *testing.T) {
	ctx := context.Background()
	mDocs := new(repoMocks.MockDocumentRepository)
	mFolders := new(repoMocks.MockFolderRepository)
	mStds := new(repoMocks.MockStandardRepository)

	mDocs.On("FindByID", ctx, "doc-d").Return(&model.Document{ID: "doc-d", FolderID: "leaf"}, nil)
	mFolders.On("FindByID", ctx, "leaf").Return(&model.Folder{ID: "leaf", ParentID: strPtr("root")}, nil)
	mFolders.On("FindByID", ctx, "root").Return(&model.Folder{ID: "root"}, nil)

	r := New(mDocs, mFolders, mStds)
	_, err := r.Resolve(ctx, "doc-d")

	assert.ErrorIs(t, err, ErrNoStandard)
}

func TestResolve_ClearingOverrideRevertsToFolder(t *testing.T) {
	ctx := context.Background()
	mDocs := new(repoMocks.MockDocumentRepository)
	mFolders := new(repoMocks.MockFolderRepository)
	mStds := new(repoMocks.MockStandardRepository)

	mFolders.On("FindByID", ctx, "folder-b").Return(&model.Folder{
		ID: "folder-b", AssignedStandardID: strPtr("s1"),
	}, nil)
	mStds.On("FindByID", ctx, "s1").Return(&model.Standard{ID: "s1"}, nil)
	mStds.On("FindByID", ctx, "s2").Return(&model.Standard{ID: "s2"}, nil)

	r := New(mDocs, mFolders, mStds)

	doc := &model.Document{ID: "doc-d", FolderID: "folder-b", OverrideStandardID: strPtr("s2")}
	std, err := r.ResolveDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "s2", std.ID)

	doc.OverrideStandardID = nil
	std, err = r.ResolveDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "s1", std.ID)
}

func TestAffectedDocuments_SkipsShadowedSubtrees(t *testing.T) {
	ctx := context.Background()
	mDocs := new(repoMocks.MockDocumentRepository)
	mFolders := new(repoMocks.MockFolderRepository)
	mStds := new(repoMocks.MockStandardRepository)

	// f has doc-1; child "plain" has doc-2; child "shadowed" carries its own
	// assignment and must not contribute documents.
	mDocs.On("ListActiveByFolder", ctx, "f").Return([]model.Document{{ID: "doc-1"}}, nil)
	mDocs.On("ListActiveByFolder", ctx, "plain").Return([]model.Document{{ID: "doc-2"}}, nil)
	mFolders.On("Children", ctx, "f").Return([]model.Folder{
		{ID: "plain"},
		{ID: "shadowed", AssignedStandardID: strPtr("s9")},
	}, nil)
	mFolders.On("Children", ctx, "plain").Return([]model.Folder{}, nil)

	r := New(mDocs, mFolders, mStds)
	docs, err := r.AffectedDocuments(ctx, "f")

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Equal(t, "doc-2", docs[1].ID)
	mDocs.AssertNotCalled(t, "ListActiveByFolder", ctx, "shadowed")
}
