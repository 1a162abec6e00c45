package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// defaultIngestConcurrency bounds how many documents are chunked and
// embedded at once. Documents are independent; the store's AddEntries is
// safe for concurrent producers.
const defaultIngestConcurrency = 4

// IngestService builds and refreshes project vector stores.
type IngestService struct {
	projects    driven.ProjectStore
	parser      driven.DocumentParser
	chunker     driven.Chunker
	embedder    driven.EmbeddingService
	stores      driven.VectorStoreFactory
	concurrency int
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	projects driven.ProjectStore,
	parser driven.DocumentParser,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	stores driven.VectorStoreFactory,
) *IngestService {
	return &IngestService{
		projects:    projects,
		parser:      parser,
		chunker:     chunker,
		embedder:    embedder,
		stores:      stores,
		concurrency: defaultIngestConcurrency,
	}
}

// Ingest chunks and embeds every document under the project folder,
// rebuilds the project's vector store from scratch, and persists it.
func (s *IngestService) Ingest(ctx context.Context, projectName string) (*domain.IngestRun, error) {
	logger.Section("Ingest")

	project, err := s.projects.GetProjectByName(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", projectName, err)
	}

	docs, err := s.parser.ParseProject(ctx, project.Path)
	if err != nil {
		return nil, fmt.Errorf("parse project folder: %w", err)
	}
	logger.Info("Parsed %d documents from %s", len(docs), project.Path)

	started := time.Now().UTC()
	store := s.stores.StoreFor(project.Path)

	chunkTotal := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	counts := make(chan int, len(docs))
	for i := range docs {
		doc := docs[i]
		g.Go(func() error {
			entries, err := s.embedDocument(gctx, &doc)
			if err != nil {
				return fmt.Errorf("document %s: %w", doc.FileName, err)
			}
			if err := store.AddEntries(entries); err != nil {
				return fmt.Errorf("document %s: %w", doc.FileName, err)
			}
			counts <- len(entries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(counts)
	for n := range counts {
		chunkTotal += n
	}

	if err := store.Save(); err != nil {
		return nil, fmt.Errorf("save vector store: %w", err)
	}

	run := &domain.IngestRun{
		ID:            uuid.New().String(),
		ProjectID:     project.ID,
		DocumentCount: len(docs),
		ChunkCount:    chunkTotal,
		Fingerprint:   store.Fingerprint(),
		StartedAt:     started,
		FinishedAt:    time.Now().UTC(),
	}
	if err := s.projects.SaveIngestRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record ingest run: %w", err)
	}

	project.UpdatedAt = run.FinishedAt
	if err := s.projects.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	logger.Info("Ingested %d documents (%d chunks) in %s",
		run.DocumentCount, run.ChunkCount, run.FinishedAt.Sub(run.StartedAt))
	return run, nil
}

// RefreshFile re-ingests a single changed file: stale entries for the
// file are removed, new chunks embedded and appended, and the store
// saved. A missing or invalid cache falls back to a full ingest.
func (s *IngestService) RefreshFile(ctx context.Context, projectName, path string) error {
	project, err := s.projects.GetProjectByName(ctx, projectName)
	if err != nil {
		return fmt.Errorf("project %q: %w", projectName, err)
	}

	store := s.stores.StoreFor(project.Path)
	if err := store.Load(); err != nil {
		logger.Debug("No usable cache for %s, running full ingest: %v", projectName, err)
		_, err := s.Ingest(ctx, projectName)
		return err
	}

	removed := store.RemoveEntriesByFile(path)
	logger.Debug("Invalidated %d entries for %s", removed, path)

	doc, err := s.parser.ParseFile(ctx, path)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// File deleted; removal above is the whole refresh.
	case err != nil:
		return fmt.Errorf("parse %s: %w", path, err)
	default:
		entries, err := s.embedDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("embed %s: %w", path, err)
		}
		if err := store.AddEntries(entries); err != nil {
			return fmt.Errorf("add entries for %s: %w", path, err)
		}
	}

	if err := store.Save(); err != nil {
		return fmt.Errorf("save vector store: %w", err)
	}
	return nil
}

// embedDocument chunks one document and embeds all its chunks in one
// batch call, returning ready vector entries.
func (s *IngestService) embedDocument(ctx context.Context, doc *domain.ParsedDocument) ([]domain.VectorEntry, error) {
	chunks := s.chunker.Chunk(doc)
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]domain.VectorEntry, len(chunks))
	for i := range chunks {
		entries[i] = entryForChunk(doc, &chunks[i])
		entries[i].Embedding = vectors[i]
	}
	return entries, nil
}

// entryForChunk builds the un-embedded skeleton entry for a chunk. The
// same derivation is used for fingerprint checks, so IDs match between
// a rebuilt store and a freshness probe.
func entryForChunk(doc *domain.ParsedDocument, chunk *domain.Chunk) domain.VectorEntry {
	hash := domain.HashContent(chunk.Content)
	return domain.VectorEntry{
		ID:          domain.NewVectorEntryID(doc.Path, chunk.PartID, hash),
		FileName:    doc.FileName,
		FilePath:    doc.Path,
		Category:    doc.Category.Partition(),
		ChunkIndex:  chunk.PartID,
		Content:     chunk.Content,
		ContentHash: hash,
	}
}
