package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding model failed to
	// initialise or is not configured. Retrieval cannot proceed without it;
	// callers must never receive zero vectors in its place.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates the text-generation service is not
	// configured. Retrieval still works; only --generate is disabled.
	ErrGeneratorUnavailable = errors.New("generation service unavailable")

	// ErrStoreCorrupt indicates a vector-store cache file could not be
	// parsed. Callers recover by rebuilding from source documents.
	ErrStoreCorrupt = errors.New("vector store corrupt")

	// ErrModelMismatch indicates a cached vector store was written by a
	// different embedding model version. Entries must be re-embedded.
	ErrModelMismatch = errors.New("embedding model version mismatch")

	// ErrDimensionMismatch indicates a vector's length does not match the
	// store's embedding dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
