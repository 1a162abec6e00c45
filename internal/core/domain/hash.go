package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// HashContent returns the content hash recorded on vector entries, used
// for deduplication and change detection.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NewVectorEntryID derives the deterministic entry identity from the
// source file, chunk ordinal, and content hash. Re-ingesting unchanged
// content yields the same ID.
func NewVectorEntryID(filePath string, chunkIndex int, contentHash string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%d|%s", filePath, chunkIndex, contentHash))
	return hex.EncodeToString(sum[:16])
}

// FingerprintEntries hashes the sorted "id:contentHash" pairs of a set of
// entries. Sorting makes it order-independent: the fingerprint changes
// exactly when the entry set changes, and embeddings do not participate,
// so it can be computed from un-embedded skeleton entries to decide
// whether a cached store is still valid.
func FingerprintEntries(entries []VectorEntry) string {
	pairs := make([]string, len(entries))
	for i := range entries {
		pairs[i] = entries[i].ID + ":" + entries[i].ContentHash
	}
	sort.Strings(pairs)

	h := sha256.New()
	for _, p := range pairs {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
