package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
)

// mockProjectStore is an in-memory ProjectStore.
type mockProjectStore struct {
	mu       sync.Mutex
	projects map[string]*domain.Project
	runs     []*domain.IngestRun
	deleted  []string
}

var _ driven.ProjectStore = (*mockProjectStore)(nil)

func newMockProjectStore(projects ...*domain.Project) *mockProjectStore {
	s := &mockProjectStore{projects: make(map[string]*domain.Project)}
	for _, p := range projects {
		s.projects[p.Name] = p
	}
	return s
}

func (s *mockProjectStore) SaveProject(_ context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.Name] = project
	return nil
}

func (s *mockProjectStore) GetProject(_ context.Context, id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *mockProjectStore) GetProjectByName(_ context.Context, name string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[name]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (s *mockProjectStore) ListProjects(_ context.Context) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Project
	for _, p := range s.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (s *mockProjectStore) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range s.projects {
		if p.ID == id {
			delete(s.projects, name)
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *mockProjectStore) SaveIngestRun(_ context.Context, run *domain.IngestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *mockProjectStore) LastIngestRun(_ context.Context, projectID string) (*domain.IngestRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].ProjectID == projectID {
			return s.runs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *mockProjectStore) Close() error { return nil }

// mockParser returns preset documents.
type mockParser struct {
	docs     []domain.ParsedDocument
	files    map[string]*domain.ParsedDocument
	parseErr error
}

var _ driven.DocumentParser = (*mockParser)(nil)

func (p *mockParser) ParseProject(_ context.Context, _ string) ([]domain.ParsedDocument, error) {
	if p.parseErr != nil {
		return nil, p.parseErr
	}
	return p.docs, nil
}

func (p *mockParser) ParseFile(_ context.Context, path string) (*domain.ParsedDocument, error) {
	if doc, ok := p.files[path]; ok {
		return doc, nil
	}
	return nil, domain.ErrNotFound
}

func (p *mockParser) Supported(string) bool { return true }

// wholeDocChunker emits one chunk per document, carrying the whole
// content. Deterministic, so fingerprints are reproducible across calls.
type wholeDocChunker struct{}

var _ driven.Chunker = (*wholeDocChunker)(nil)

func (wholeDocChunker) Chunk(doc *domain.ParsedDocument) []domain.Chunk {
	if doc.Content == "" {
		return nil
	}
	return []domain.Chunk{{
		DocID:   doc.ID,
		PartID:  1,
		Content: doc.Content,
	}}
}

// stubEmbedder returns a fixed vector and counts calls.
type stubEmbedder struct {
	mu         sync.Mutex
	embedCalls int
	batchCalls int
	embedErr   error
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embedCalls++
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	return []float32{1, 0, 0}, nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batchCalls++
	if e.embedErr != nil {
		return nil, e.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int            { return 3 }
func (e *stubEmbedder) ModelName() string          { return "test-model" }
func (e *stubEmbedder) Ping(context.Context) error { return nil }
func (e *stubEmbedder) Close() error               { return nil }

// memStore is an in-memory VectorStore with scriptable Load behaviour
// and preset search results per category.
type memStore struct {
	mu      sync.Mutex
	entries []domain.VectorEntry

	loadErr error
	saves   int
	loads   int

	procMatches []domain.Match
	ctxMatches  []domain.Match
	procTopK    int
	ctxTopK     int
	searches    int
}

var _ driven.VectorStore = (*memStore)(nil)

func (s *memStore) AddEntry(entry domain.VectorEntry) error {
	return s.AddEntries([]domain.VectorEntry{entry})
}

func (s *memStore) AddEntries(entries []domain.VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *memStore) RemoveEntriesByFile(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if e.FilePath == path {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return removed
}

func (s *memStore) Search(_ context.Context, _ []float32, topK int, category domain.Category) ([]domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches++
	var matches []domain.Match
	switch category {
	case domain.CategoryProcedure:
		s.procTopK = topK
		matches = s.procMatches
	case domain.CategoryContext:
		s.ctxTopK = topK
		matches = s.ctxMatches
	}
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *memStore) Entries() []domain.VectorEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.VectorEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *memStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *memStore) Fingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FingerprintEntries(s.entries)
}

func (s *memStore) ModelVersion() string { return "test-model" }

func (s *memStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

func (s *memStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.loadErr
}

// memStoreFactory hands out one shared store per project path so test
// state survives repeated StoreFor calls.
type memStoreFactory struct {
	mu      sync.Mutex
	stores  map[string]*memStore
	removed []string
}

var _ driven.VectorStoreFactory = (*memStoreFactory)(nil)

func newMemStoreFactory() *memStoreFactory {
	return &memStoreFactory{stores: make(map[string]*memStore)}
}

func (f *memStoreFactory) StoreFor(projectPath string) driven.VectorStore {
	return f.store(projectPath)
}

func (f *memStoreFactory) store(projectPath string) *memStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stores[projectPath]; ok {
		return s
	}
	s := &memStore{}
	f.stores[projectPath] = s
	return s
}

func (f *memStoreFactory) Remove(projectPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stores, projectPath)
	f.removed = append(f.removed, projectPath)
	return nil
}

// mockIngester records Ingest calls and runs a scripted side effect so
// tests can simulate a rebuild repairing the store.
type mockIngester struct {
	mu        sync.Mutex
	ingests   []string
	refreshes []string
	onIngest  func()
	err       error
}

var _ driving.IngestService = (*mockIngester)(nil)

func (m *mockIngester) Ingest(_ context.Context, projectName string) (*domain.IngestRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingests = append(m.ingests, projectName)
	if m.err != nil {
		return nil, m.err
	}
	if m.onIngest != nil {
		m.onIngest()
	}
	return &domain.IngestRun{ID: fmt.Sprintf("run-%d", len(m.ingests))}, nil
}

func (m *mockIngester) RefreshFile(_ context.Context, projectName, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes = append(m.refreshes, projectName+":"+path)
	return m.err
}

func (m *mockIngester) ingestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ingests)
}

// skeletonFor mirrors the entry derivation used during ingest so tests
// can construct a store whose fingerprint matches a document set.
func skeletonFor(doc *domain.ParsedDocument) domain.VectorEntry {
	hash := domain.HashContent(doc.Content)
	return domain.VectorEntry{
		ID:          domain.NewVectorEntryID(doc.Path, 1, hash),
		FileName:    doc.FileName,
		FilePath:    doc.Path,
		Category:    doc.Category.Partition(),
		ChunkIndex:  1,
		Content:     doc.Content,
		ContentHash: hash,
	}
}
