package domain

import "time"

// ParsedDocument is the output of the external parsing layer: plain text
// plus the structural metadata needed to chunk it well. It is immutable
// once produced.
type ParsedDocument struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the absolute location of the source file.
	Path string

	// FileName is the base name used for display and citations.
	FileName string

	// Content is the full extracted text.
	Content string

	// MIMEType is the source content type (e.g., "application/pdf").
	MIMEType string

	// Category partitions the document for retrieval (procedure vs context).
	Category Category

	// Metadata carries the structural hints the chunker consumes.
	Metadata DocumentMetadata
}

// DocumentMetadata holds the structural fields the chunker actually
// consumes. Fields are explicit rather than an open map so consumers get
// compile-time safety; Extra exists only for unstructured passthrough.
type DocumentMetadata struct {
	// DocumentType tags the regulatory document kind
	// (e.g., "risk-analysis", "design-input", "test-protocol").
	DocumentType string

	// Phase is the design-control phase tag, if any.
	Phase string

	// OCRDerived is true when the text came from OCR rather than extraction.
	OCRDerived bool

	// OCRConfidence is the mean OCR confidence in [0, 1]. Only meaningful
	// when OCRDerived is true.
	OCRConfidence float64

	// RequirementIDs lists requirement identifiers known to occur in the document.
	RequirementIDs []string

	// RiskIDs lists risk/hazard identifiers known to occur in the document.
	RiskIDs []string

	// TestCaseIDs lists test-case identifiers known to occur in the document.
	TestCaseIDs []string

	// Sections is the section-boundary table, ordered by offset.
	Sections []SectionMarker

	// PageBreaks holds the character offset of each page break, ordered.
	PageBreaks []int

	// PageCount is the page count for paginated formats (0 if unknown).
	PageCount int

	// Extra carries parser-specific values not consumed by the core.
	Extra map[string]string
}

// SectionMarker locates one structural section within a document.
type SectionMarker struct {
	// Title is the section heading text.
	Title string

	// Offset is the character position where the section starts.
	Offset int
}

// Chunk is a bounded span of one document's text, sized for embedding.
// Chunks are created once during ingestion and never mutated.
type Chunk struct {
	// DocID links to the parent ParsedDocument.
	DocID string

	// PartID is the 1-based sequential position within the document.
	PartID int

	// Content is the chunk text, including any injected overlap head.
	Content string

	// Strategy names the chunking strategy that produced this chunk.
	Strategy string

	// TokenCount is the estimated token count of Content.
	TokenCount int

	// CharCount is len(Content).
	CharCount int

	// Metadata is the enriched per-chunk subset of the document metadata.
	Metadata ChunkMetadata
}

// ChunkMetadata is the per-chunk enrichment: location within the source
// plus only the identifiers that literally occur in the chunk text.
type ChunkMetadata struct {
	// PageNumber is the 1-based page containing the chunk start (0 if unknown).
	PageNumber int

	// SectionTitle is the enclosing section heading ("" if none).
	SectionTitle string

	// RequirementIDs are the requirement IDs present in the chunk text.
	RequirementIDs []string

	// RiskIDs are the risk/hazard IDs present in the chunk text.
	RiskIDs []string

	// TestCaseIDs are the test-case IDs present in the chunk text.
	TestCaseIDs []string
}

// VectorEntry wraps one chunk's text with its embedding and the flat
// record the vector store persists. Entries are owned exclusively by the
// vector store.
type VectorEntry struct {
	// ID is derived deterministically from (FilePath, ChunkIndex, ContentHash)
	// so re-ingesting unchanged content yields the same ID.
	ID string `json:"id"`

	// FileName is the display name of the source file.
	FileName string `json:"fileName"`

	// FilePath is the source file location.
	FilePath string `json:"filePath"`

	// Category partitions entries for filtered search.
	Category Category `json:"category"`

	// ChunkIndex is the chunk's ordinal within its source document.
	ChunkIndex int `json:"chunkIndex"`

	// Content is the original chunk text.
	Content string `json:"content"`

	// ContentHash is the hash of Content, used for change detection.
	ContentHash string `json:"contentHash"`

	// Embedding is the fixed-length vector for Content.
	Embedding []float32 `json:"embedding"`
}

// IngestRun records one completed ingestion of a project folder.
type IngestRun struct {
	// ID is the unique run identifier.
	ID string

	// ProjectID is the project that was ingested.
	ProjectID string

	// DocumentCount is the number of documents processed.
	DocumentCount int

	// ChunkCount is the number of chunks embedded.
	ChunkCount int

	// Fingerprint is the resulting vector-store fingerprint.
	Fingerprint string

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Project is a registered folder of regulatory documents.
type Project struct {
	// ID is the unique project identifier.
	ID string

	// Name is the human-chosen project name (unique).
	Name string

	// Path is the project folder on disk.
	Path string

	// CreatedAt is when the project was registered.
	CreatedAt time.Time

	// UpdatedAt is when the project was last ingested or modified.
	UpdatedAt time.Time
}
