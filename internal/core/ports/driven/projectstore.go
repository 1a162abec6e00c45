package driven

import (
	"context"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// ProjectStore persists registered projects and their ingest history.
// Backed by SQLite.
type ProjectStore interface {
	// SaveProject stores or updates a project.
	SaveProject(ctx context.Context, project *domain.Project) error

	// GetProject retrieves a project by ID.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// GetProjectByName retrieves a project by its unique name.
	GetProjectByName(ctx context.Context, name string) (*domain.Project, error)

	// ListProjects returns all projects ordered by name.
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// DeleteProject removes a project and its ingest history.
	DeleteProject(ctx context.Context, id string) error

	// SaveIngestRun records a completed ingest run.
	SaveIngestRun(ctx context.Context, run *domain.IngestRun) error

	// LastIngestRun returns the most recent run for a project, or
	// domain.ErrNotFound if the project was never ingested.
	LastIngestRun(ctx context.Context, projectID string) (*domain.IngestRun, error)

	// Close releases the underlying database handle.
	Close() error
}
