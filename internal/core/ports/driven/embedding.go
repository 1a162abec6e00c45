package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations must be idempotent (same text, same vector, barring
// model version changes) and safe for concurrent use. The underlying
// model handle is initialised at most once per process and shared; a
// failed initialisation surfaces as domain.ErrEmbeddingUnavailable on
// every subsequent call, never as a silent zero vector.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// Every entry in a store must have this dimensionality.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	// Stores record it; a mismatch invalidates cached embeddings.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
