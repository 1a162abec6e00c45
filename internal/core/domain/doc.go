// Package domain defines the core business entities for Dossier.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ParsedDocument: Plain text plus structural metadata from the parsing layer
//   - Chunk: A retrieval unit produced by the chunker
//   - VectorEntry: An embedded chunk owned by the vector store
//   - SourceReference: A deduplicated citation record
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
