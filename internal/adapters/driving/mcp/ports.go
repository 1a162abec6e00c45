package mcp

import (
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval assembles context for queries.
	Retrieval driving.RetrievalService

	// Project manages registered projects.
	Project driving.ProjectService

	// Ingest builds and refreshes project indexes.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Project and Ingest are optional; their tools degrade gracefully
	return nil
}
