package driven

import "github.com/regulaware/dossier-cli/internal/core/domain"

// Chunker splits one parsed document into ordered, token-sized chunks.
// Empty content yields an empty sequence; chunking never fails, it only
// degrades (oversized emergency chunks are logged, not returned as errors).
type Chunker interface {
	Chunk(doc *domain.ParsedDocument) []domain.Chunk
}
