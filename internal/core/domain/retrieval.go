package domain

// RetrievalOptions configures one retrieval call.
type RetrievalOptions struct {
	// ProcedureTopK is the maximum procedure matches to retrieve (default 3).
	ProcedureTopK int

	// ContextTopK is the maximum context matches to retrieve (default 2).
	ContextTopK int

	// MaxContextTokens caps the estimated size of the assembled context
	// block (default 6000).
	MaxContextTokens int

	// PrimaryContext is the caller-supplied block that is always included
	// verbatim and never truncated.
	PrimaryContext string
}

// Match is one similarity-search hit: an entry and its cosine similarity.
type Match struct {
	// Entry is the matched vector entry.
	Entry VectorEntry

	// Similarity is the cosine similarity in [-1, 1].
	Similarity float64
}

// RetrievalMetadata describes what the assembler actually produced.
// Recovered conditions (truncation, cache rebuild) surface here rather
// than as top-level errors.
type RetrievalMetadata struct {
	// PrimaryIncluded is true when a primary context block was present.
	PrimaryIncluded bool

	// ProcedureChunks is the number of procedure matches included.
	ProcedureChunks int

	// ContextChunks is the number of context matches included.
	ContextChunks int

	// TokenEstimate is the estimated token count of the assembled context.
	TokenEstimate int

	// Truncated is true when the token budget forced chunks to be dropped.
	Truncated bool

	// CacheRebuilt is true when the vector store was re-ingested for this call.
	CacheRebuilt bool

	// Sources is the deduplicated list of source file names touched.
	Sources []string
}

// RetrievalResult is the full output of a retrieve call.
type RetrievalResult struct {
	// Context is the assembled, tiered context string.
	Context string

	// Metadata describes the assembly.
	Metadata RetrievalMetadata

	// ProcedureMatches are the raw procedure-partition hits, best first.
	ProcedureMatches []Match

	// ContextMatches are the raw context-partition hits, best first.
	ContextMatches []Match
}

// TokenUsage reports token consumption from a generation call.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the prompt.
	PromptTokens int

	// CompletionTokens is the number of tokens generated.
	CompletionTokens int
}
