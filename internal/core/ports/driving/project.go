package driving

import (
	"context"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// ProjectService manages registered projects.
type ProjectService interface {
	// Add registers a folder of documents under a unique name.
	Add(ctx context.Context, name, path string) (*domain.Project, error)

	// Get retrieves a project by name.
	Get(ctx context.Context, name string) (*domain.Project, error)

	// List returns all registered projects.
	List(ctx context.Context) ([]domain.Project, error)

	// LastRun returns the most recent ingest run for the named project,
	// or domain.ErrNotFound if it was never ingested.
	LastRun(ctx context.Context, name string) (*domain.IngestRun, error)

	// Remove deletes a project registration and its cached vector store.
	Remove(ctx context.Context, name string) error
}
