package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/regulaware/dossier-cli/internal/chunker"
	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Default retrieval parameters.
const (
	DefaultProcedureTopK    = 3
	DefaultContextTopK      = 2
	DefaultMaxContextTokens = 6000

	// maxBoostedTopK caps how far explicit document references can raise
	// a partition's top-K.
	maxBoostedTopK = 10
)

// truncationMarker is appended whenever the token budget forced chunks
// to be dropped, so downstream consumers can detect cut context.
const truncationMarker = "[context truncated to fit token budget]"

// bracketReference matches explicit [Document Name] references in a query.
var bracketReference = regexp.MustCompile(`\[([^\[\]]+)\]`)

// RetrievalService orchestrates cache validation, similarity search, and
// tiered context assembly.
type RetrievalService struct {
	projects driven.ProjectStore
	parser   driven.DocumentParser
	chunks   driven.Chunker
	embedder driven.EmbeddingService
	stores   driven.VectorStoreFactory
	ingester driving.IngestService
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(
	projects driven.ProjectStore,
	parser driven.DocumentParser,
	chunks driven.Chunker,
	embedder driven.EmbeddingService,
	stores driven.VectorStoreFactory,
	ingester driving.IngestService,
) *RetrievalService {
	return &RetrievalService{
		projects: projects,
		parser:   parser,
		chunks:   chunks,
		embedder: embedder,
		stores:   stores,
		ingester: ingester,
	}
}

// Retrieve runs the full pipeline for one query: ensure a valid store,
// embed the query, search both partitions, and assemble the tiered,
// budget-capped context block.
func (s *RetrievalService) Retrieve(
	ctx context.Context, projectName, query string, opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Project: %q, query: %q", projectName, query)

	project, err := s.projects.GetProjectByName(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", projectName, err)
	}

	store, rebuilt, err := s.ensureStore(ctx, project)
	if err != nil {
		return nil, err
	}

	applyDefaults(&opts)

	var procMatches, ctxMatches []domain.Match
	query = strings.TrimSpace(query)
	if query != "" && store.Len() > 0 {
		queryVec, err := s.embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}

		procK, ctxK := s.boostedTopK(store, query, opts)
		logger.Debug("Top-K: procedure=%d, context=%d", procK, ctxK)

		procMatches, err = store.Search(ctx, queryVec, procK, domain.CategoryProcedure)
		if err != nil {
			return nil, fmt.Errorf("procedure search: %w", err)
		}
		ctxMatches, err = store.Search(ctx, queryVec, ctxK, domain.CategoryContext)
		if err != nil {
			return nil, fmt.Errorf("context search: %w", err)
		}
		logger.Debug("Matches: %d procedure, %d context", len(procMatches), len(ctxMatches))
	}

	result := assemble(opts, procMatches, ctxMatches)
	result.Metadata.CacheRebuilt = rebuilt
	result.ProcedureMatches = procMatches
	result.ContextMatches = ctxMatches

	logger.Info("Assembled context: ~%d tokens, %d procedure + %d context chunks (truncated=%t)",
		result.Metadata.TokenEstimate, result.Metadata.ProcedureChunks,
		result.Metadata.ContextChunks, result.Metadata.Truncated)
	return result, nil
}

// ensureStore loads the project's cached store if its fingerprint still
// matches the current document set, and rebuilds it otherwise. Data
// errors (corrupt cache, model mismatch) are recovered by rebuilding;
// they never surface to the caller.
func (s *RetrievalService) ensureStore(
	ctx context.Context, project *domain.Project,
) (driven.VectorStore, bool, error) {
	store := s.stores.StoreFor(project.Path)

	err := store.Load()
	switch {
	case err == nil:
		stale, ferr := s.staleFingerprint(ctx, project.Path, store.Fingerprint())
		if ferr != nil {
			return nil, false, ferr
		}
		if !stale {
			logger.Debug("Vector store cache valid (%d entries)", store.Len())
			return store, false, nil
		}
		logger.Info("Document set changed, rebuilding vector store")

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrStoreCorrupt),
		errors.Is(err, domain.ErrModelMismatch):
		logger.Info("No valid vector store cache, rebuilding: %v", err)

	default:
		return nil, false, fmt.Errorf("load vector store: %w", err)
	}

	if _, err := s.ingester.Ingest(ctx, project.Name); err != nil {
		return nil, false, fmt.Errorf("rebuild vector store: %w", err)
	}
	store = s.stores.StoreFor(project.Path)
	if err := store.Load(); err != nil {
		return nil, false, fmt.Errorf("load rebuilt vector store: %w", err)
	}
	return store, true, nil
}

// staleFingerprint chunks the current document set (without embedding)
// and compares the expected fingerprint with the cached one.
func (s *RetrievalService) staleFingerprint(ctx context.Context, projectPath, cached string) (bool, error) {
	docs, err := s.parser.ParseProject(ctx, projectPath)
	if err != nil {
		return false, fmt.Errorf("parse project folder: %w", err)
	}

	var skeletons []domain.VectorEntry
	for i := range docs {
		for _, chunk := range s.chunks.Chunk(&docs[i]) {
			skeletons = append(skeletons, entryForChunk(&docs[i], &chunk))
		}
	}
	return domain.FingerprintEntries(skeletons) != cached, nil
}

// boostedTopK raises a partition's top-K when the query names documents
// explicitly in bracket notation (e.g., "per [SOP-012 Design Review]").
func (s *RetrievalService) boostedTopK(store driven.VectorStore, query string, opts domain.RetrievalOptions) (int, int) {
	procK, ctxK := opts.ProcedureTopK, opts.ContextTopK

	refs := bracketReference.FindAllStringSubmatch(query, -1)
	if len(refs) == 0 {
		return procK, ctxK
	}

	entries := store.Entries()
	for _, ref := range refs {
		name := strings.ToLower(strings.TrimSpace(ref[1]))
		if name == "" {
			continue
		}
		for i := range entries {
			if !strings.Contains(strings.ToLower(entries[i].FileName), name) {
				continue
			}
			switch entries[i].Category {
			case domain.CategoryProcedure:
				if procK < maxBoostedTopK {
					procK++
					logger.Debug("Boosting procedure top-K for reference %q", ref[1])
				}
			case domain.CategoryContext:
				if ctxK < maxBoostedTopK {
					ctxK++
					logger.Debug("Boosting context top-K for reference %q", ref[1])
				}
			}
			break
		}
	}
	return procK, ctxK
}

// applyDefaults fills unset options.
func applyDefaults(opts *domain.RetrievalOptions) {
	if opts.ProcedureTopK <= 0 {
		opts.ProcedureTopK = DefaultProcedureTopK
	}
	if opts.ContextTopK <= 0 {
		opts.ContextTopK = DefaultContextTopK
	}
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = DefaultMaxContextTokens
	}
}

// assemble builds the tiered context string under the token budget.
// Tier order is fixed: primary context, procedure matches, context
// matches. When the budget is exceeded, chunks are dropped from the
// lowest-priority tier inward (context first, then procedures); the
// primary block is never truncated.
func assemble(opts domain.RetrievalOptions, procMatches, ctxMatches []domain.Match) *domain.RetrievalResult {
	procN, ctxN := len(procMatches), len(ctxMatches)
	truncated := false

	var text string
	for {
		text = render(opts.PrimaryContext, procMatches[:procN], ctxMatches[:ctxN], truncated)
		if chunker.EstimateTokens(text) <= opts.MaxContextTokens {
			break
		}
		if ctxN == 0 && procN == 0 {
			// Only the primary block remains; it is the floor.
			break
		}
		truncated = true
		if ctxN > 0 {
			ctxN--
		} else {
			procN--
		}
	}

	return &domain.RetrievalResult{
		Context: text,
		Metadata: domain.RetrievalMetadata{
			PrimaryIncluded: opts.PrimaryContext != "",
			ProcedureChunks: procN,
			ContextChunks:   ctxN,
			TokenEstimate:   chunker.EstimateTokens(text),
			Truncated:       truncated,
			Sources:         sourceNames(procMatches[:procN], ctxMatches[:ctxN]),
		},
	}
}

// render writes the tiers in their fixed order.
func render(primary string, procMatches, ctxMatches []domain.Match, truncated bool) string {
	var b strings.Builder

	if primary != "" {
		b.WriteString(primary)
		b.WriteString("\n")
	}

	if len(procMatches) > 0 {
		b.WriteString("\n=== Relevant Procedures ===\n")
		writeMatches(&b, procMatches)
	}
	if len(ctxMatches) > 0 {
		b.WriteString("\n=== Supporting Context ===\n")
		writeMatches(&b, ctxMatches)
	}
	if truncated {
		b.WriteString("\n")
		b.WriteString(truncationMarker)
		b.WriteString("\n")
	}
	return b.String()
}

// writeMatches annotates each chunk with its source file and similarity.
func writeMatches(b *strings.Builder, matches []domain.Match) {
	for i := range matches {
		fmt.Fprintf(b, "\n[Source: %s | similarity %.2f]\n%s\n",
			matches[i].Entry.FileName, matches[i].Similarity, matches[i].Entry.Content)
	}
}

// sourceNames deduplicates the file names of included matches, keeping
// procedure-tier order ahead of context-tier order.
func sourceNames(procMatches, ctxMatches []domain.Match) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range append(append([]domain.Match{}, procMatches...), ctxMatches...) {
		if seen[m.Entry.FileName] {
			continue
		}
		seen[m.Entry.FileName] = true
		names = append(names, m.Entry.FileName)
	}
	return names
}
