// Package file provides a persistent, project-scoped vector store backed
// by a single JSON file. Similarity search is a linear cosine scan: store
// sizes are hundreds of chunks, and avoiding an approximate index keeps
// the component dependency-free and auditable.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// schemaVersion is bumped when the on-disk layout changes. Older files
// are treated as a cache miss, never migrated.
const schemaVersion = 1

// Store is a file-backed vector store. All methods are safe for
// concurrent use; Save writes through a unique temp file and atomic
// rename, so saves never interleave even across store instances sharing
// one path.
type Store struct {
	mu           sync.RWMutex
	path         string
	modelVersion string
	dimensions   int
	entries      []domain.VectorEntry
	createdAt    time.Time
	updatedAt    time.Time
}

// storeFile is the persisted JSON layout.
type storeFile struct {
	SchemaVersion int                  `json:"schemaVersion"`
	ModelVersion  string               `json:"modelVersion"`
	Dimensions    int                  `json:"dimensions"`
	Fingerprint   string               `json:"fingerprint"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
	Entries       []domain.VectorEntry `json:"entries"`
}

// New creates an empty store persisted at path. The model version tag
// guards against mixing embeddings across model versions; dimensions is
// the fixed vector length every entry must have.
func New(path, modelVersion string, dimensions int) *Store {
	now := time.Now().UTC()
	return &Store{
		path:         path,
		modelVersion: modelVersion,
		dimensions:   dimensions,
		createdAt:    now,
		updatedAt:    now,
	}
}

// AddEntry appends one entry.
func (s *Store) AddEntry(entry domain.VectorEntry) error {
	return s.AddEntries([]domain.VectorEntry{entry})
}

// AddEntries appends entries in order. Entries are validated against the
// store's dimensionality before any of them is added.
func (s *Store) AddEntries(entries []domain.VectorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range entries {
		if len(entries[i].Embedding) != s.dimensions {
			return fmt.Errorf("entry %s has %d dimensions, store expects %d: %w",
				entries[i].ID, len(entries[i].Embedding), s.dimensions, domain.ErrDimensionMismatch)
		}
	}

	s.entries = append(s.entries, entries...)
	s.updatedAt = time.Now().UTC()
	return nil
}

// RemoveEntriesByFile drops every entry whose FilePath matches and
// returns the removed count. Used to invalidate one source file's chunks
// when it changes on disk.
func (s *Store) RemoveEntriesByFile(path string) int {
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
	if removed > 0 {
		s.updatedAt = time.Now().UTC()
	}
	return removed
}

// Search computes cosine similarity against every entry (linear scan),
// optionally restricted to one category, and returns at most topK
// matches in strictly decreasing similarity order. Ties keep insertion
// order.
func (s *Store) Search(ctx context.Context, query []float32, topK int, category domain.Category) ([]domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, store expects %d: %w",
			len(query), s.dimensions, domain.ErrDimensionMismatch)
	}
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]domain.Match, 0, len(s.entries))
	for _, e := range s.entries {
		if category != "" && e.Category != category {
			continue
		}
		matches = append(matches, domain.Match{
			Entry:      e,
			Similarity: cosineSimilarity(query, e.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Entries returns a snapshot of all entries in insertion order.
func (s *Store) Entries() []domain.VectorEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VectorEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the entry count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Fingerprint hashes the sorted set of entry identities and content
// hashes. It is order-independent, so adding and removing the same entry
// returns the fingerprint to its original value.
func (s *Store) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fingerprint(s.entries)
}

// ModelVersion returns the embedding model tag the store was built with.
func (s *Store) ModelVersion() string {
	return s.modelVersion
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Save writes the whole store to a temp file and atomically renames it
// into place, so readers never observe a partial file.
func (s *Store) Save() error {
	s.mu.RLock()
	payload := storeFile{
		SchemaVersion: schemaVersion,
		ModelVersion:  s.modelVersion,
		Dimensions:    s.dimensions,
		Fingerprint:   fingerprint(s.entries),
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
		Entries:       s.entries,
	}
	data, err := json.Marshal(payload)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	// Each save gets its own temp file so concurrent saves from separate
	// store instances never interleave writes; the last rename wins and
	// the file on disk is always one complete snapshot.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace store: %w", err)
	}

	logger.Debug("Saved vector store: %d entries to %s", len(payload.Entries), s.path)
	return nil
}

// Load replaces the store contents from the backing file. A missing file
// is domain.ErrNotFound; unparseable or dimension-inconsistent content is
// domain.ErrStoreCorrupt; a different model tag is domain.ErrModelMismatch.
// On any error the in-memory store is left unchanged so callers can
// rebuild from source documents.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("store file %s: %w", s.path, domain.ErrNotFound)
		}
		return fmt.Errorf("read store: %w", err)
	}

	var payload storeFile
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.Warn("Vector store cache unreadable, discarding: %v", err)
		return fmt.Errorf("parse store %s: %w", s.path, domain.ErrStoreCorrupt)
	}
	if payload.SchemaVersion != schemaVersion {
		logger.Warn("Vector store schema %d != %d, discarding", payload.SchemaVersion, schemaVersion)
		return fmt.Errorf("store schema version %d: %w", payload.SchemaVersion, domain.ErrStoreCorrupt)
	}
	if payload.ModelVersion != s.modelVersion {
		logger.Warn("Vector store built with model %q, current model %q", payload.ModelVersion, s.modelVersion)
		return fmt.Errorf("store model %q: %w", payload.ModelVersion, domain.ErrModelMismatch)
	}
	for i := range payload.Entries {
		if len(payload.Entries[i].Embedding) != s.dimensions {
			return fmt.Errorf("entry %s dimensions: %w", payload.Entries[i].ID, domain.ErrStoreCorrupt)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = payload.Entries
	s.createdAt = payload.CreatedAt
	s.updatedAt = payload.UpdatedAt

	logger.Debug("Loaded vector store: %d entries from %s", len(s.entries), s.path)
	return nil
}

// fingerprint hashes the entry set. Callers hold the lock.
func fingerprint(entries []domain.VectorEntry) string {
	return domain.FingerprintEntries(entries)
}

// cosineSimilarity is dot(a,b) / (|a| * |b|), guarded so a zero vector
// yields 0 rather than dividing by zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
