package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

type ingestFixture struct {
	service  *IngestService
	projects *mockProjectStore
	parser   *mockParser
	factory  *memStoreFactory
	store    *memStore
	embedder *stubEmbedder
	project  *domain.Project
}

func newIngestFixture(docs ...domain.ParsedDocument) *ingestFixture {
	project := testProject()
	parser := &mockParser{docs: docs, files: make(map[string]*domain.ParsedDocument)}
	factory := newMemStoreFactory()
	embedder := &stubEmbedder{}
	projects := newMockProjectStore(project)

	return &ingestFixture{
		service:  NewIngestService(projects, parser, wholeDocChunker{}, embedder, factory),
		projects: projects,
		parser:   parser,
		factory:  factory,
		store:    factory.store(project.Path),
		embedder: embedder,
		project:  project,
	}
}

func TestIngest_BuildsAndPersistsStore(t *testing.T) {
	f := newIngestFixture(
		procedureDoc("sop-001.md", "first procedure"),
		contextDoc("spec.md", "device specification"),
	)

	run, err := f.service.Ingest(context.Background(), "alpha")

	require.NoError(t, err)
	assert.Equal(t, 2, run.DocumentCount)
	assert.Equal(t, 2, run.ChunkCount)
	assert.Equal(t, f.project.ID, run.ProjectID)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, f.store.Fingerprint(), run.Fingerprint)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	assert.Equal(t, 2, f.store.Len())
	assert.Equal(t, 1, f.store.saves)
	for _, e := range f.store.Entries() {
		assert.Len(t, e.Embedding, 3)
		assert.Equal(t, domain.HashContent(e.Content), e.ContentHash)
	}

	require.Len(t, f.projects.runs, 1)
	assert.Equal(t, run.ID, f.projects.runs[0].ID)
}

func TestIngest_StandardsStoredInContextPartition(t *testing.T) {
	standard := domain.ParsedDocument{
		ID:       "iso-14971.md",
		Path:     "/projects/alpha/standards/iso-14971.md",
		FileName: "iso-14971.md",
		Content:  "risk acceptability criteria",
		Category: domain.CategoryStandard,
	}
	f := newIngestFixture(standard)

	_, err := f.service.Ingest(context.Background(), "alpha")

	require.NoError(t, err)
	require.Equal(t, 1, f.store.Len())
	assert.Equal(t, domain.CategoryContext, f.store.Entries()[0].Category,
		"standards must land in a searched partition")
}

func TestIngest_EmptyDocumentYieldsNoEntries(t *testing.T) {
	f := newIngestFixture(procedureDoc("empty.md", ""))

	run, err := f.service.Ingest(context.Background(), "alpha")

	require.NoError(t, err)
	assert.Equal(t, 1, run.DocumentCount)
	assert.Equal(t, 0, run.ChunkCount)
	assert.Equal(t, 0, f.store.Len())
}

func TestIngest_UnknownProject(t *testing.T) {
	f := newIngestFixture()

	_, err := f.service.Ingest(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngest_EmbedderFailureAborts(t *testing.T) {
	f := newIngestFixture(procedureDoc("sop.md", "content"))
	f.embedder.embedErr = domain.ErrEmbeddingUnavailable

	_, err := f.service.Ingest(context.Background(), "alpha")

	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 0, f.store.saves, "a failed ingest must not persist a partial store")
	assert.Empty(t, f.projects.runs)
}

func TestRefreshFile_ReplacesEntriesForChangedFile(t *testing.T) {
	doc := procedureDoc("sop.md", "old content")
	f := newIngestFixture(doc)
	f.store.entries = []domain.VectorEntry{skeletonFor(&doc)}

	updated := procedureDoc("sop.md", "new content")
	f.parser.files[updated.Path] = &updated

	err := f.service.RefreshFile(context.Background(), "alpha", updated.Path)

	require.NoError(t, err)
	require.Equal(t, 1, f.store.Len())
	assert.Equal(t, "new content", f.store.Entries()[0].Content)
	assert.Equal(t, 1, f.store.saves)
}

func TestRefreshFile_DeletedFileRemovesEntries(t *testing.T) {
	doc := procedureDoc("sop.md", "content")
	f := newIngestFixture(doc)
	f.store.entries = []domain.VectorEntry{skeletonFor(&doc)}
	// ParseFile has no entry for the path, so it reports the file gone

	err := f.service.RefreshFile(context.Background(), "alpha", doc.Path)

	require.NoError(t, err)
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 1, f.store.saves)
}

func TestRefreshFile_NoCacheFallsBackToFullIngest(t *testing.T) {
	doc := procedureDoc("sop.md", "content")
	f := newIngestFixture(doc)
	f.store.loadErr = domain.ErrNotFound

	err := f.service.RefreshFile(context.Background(), "alpha", doc.Path)

	require.NoError(t, err)
	assert.Equal(t, 1, f.store.Len(), "full ingest rebuilds from the project folder")
	require.Len(t, f.projects.runs, 1)
}

func TestRefreshFile_UnknownProject(t *testing.T) {
	f := newIngestFixture()

	err := f.service.RefreshFile(context.Background(), "missing", "/some/path")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
