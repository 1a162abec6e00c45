package driving

import (
	"context"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// RetrievalService assembles token-budgeted, citation-tracked context
// for a generation request against one project's document set.
type RetrievalService interface {
	// Retrieve runs similarity search over the project's procedure and
	// context partitions and assembles the tiered context block. An empty
	// query still returns the primary context with zero retrieved chunks.
	Retrieve(ctx context.Context, projectName, query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, error)
}

// IngestService builds or refreshes a project's vector store.
type IngestService interface {
	// Ingest chunks and embeds every document under the project folder,
	// rebuilds the project's vector store, and persists it.
	Ingest(ctx context.Context, projectName string) (*domain.IngestRun, error)

	// RefreshFile re-ingests a single changed file: stale entries are
	// removed, new chunks embedded and appended, and the store saved.
	RefreshFile(ctx context.Context, projectName, path string) error
}
