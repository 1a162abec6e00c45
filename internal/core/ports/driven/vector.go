package driven

import (
	"context"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// VectorStore is an append-ordered collection of embedded chunks with
// disk persistence and top-K cosine-similarity search.
//
// The reference implementation is a whole-file JSON store with a linear
// scan: store sizes here are hundreds of chunks, not millions, and the
// linear scan keeps the component auditable. Larger corpora should swap
// in an index behind this same contract.
type VectorStore interface {
	// AddEntry appends one entry. No deduplication happens here; callers
	// remove stale entries for a changed file before re-adding.
	AddEntry(entry domain.VectorEntry) error

	// AddEntries appends entries in order. Safe to call from concurrent
	// producers.
	AddEntries(entries []domain.VectorEntry) error

	// RemoveEntriesByFile drops every entry for the given source file and
	// returns how many were removed.
	RemoveEntriesByFile(path string) int

	// Search returns at most topK entries by descending cosine similarity
	// to the query vector, optionally restricted to one category
	// (empty category means no filter). Ties keep insertion order.
	Search(ctx context.Context, query []float32, topK int, category domain.Category) ([]domain.Match, error)

	// Entries returns a snapshot of all entries in insertion order.
	Entries() []domain.VectorEntry

	// Len returns the entry count.
	Len() int

	// Fingerprint returns the deterministic hash over all entry IDs and
	// content hashes. It changes exactly when the entry set changes.
	Fingerprint() string

	// ModelVersion returns the embedding model tag the store was built with.
	ModelVersion() string

	// Save persists the whole store to its backing file atomically.
	Save() error

	// Load replaces the store contents from the backing file. A missing
	// file returns domain.ErrNotFound; a corrupt or model-mismatched file
	// returns domain.ErrStoreCorrupt or domain.ErrModelMismatch and leaves
	// the store unchanged.
	Load() error
}
