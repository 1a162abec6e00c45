package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/core/ports/driving"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages project registrations.
type ProjectService struct {
	store  driven.ProjectStore
	stores driven.VectorStoreFactory
}

// NewProjectService creates a new project service.
func NewProjectService(store driven.ProjectStore, stores driven.VectorStoreFactory) *ProjectService {
	return &ProjectService{
		store:  store,
		stores: stores,
	}
}

// Add registers a folder of documents under a unique name.
func (s *ProjectService) Add(ctx context.Context, name, path string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name is empty: %w", domain.ErrInvalidInput)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project path %s: %w", abs, domain.ErrNotFound)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory: %w", abs, domain.ErrInvalidInput)
	}

	if existing, err := s.store.GetProjectByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("project %q: %w", name, domain.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	project := &domain.Project{
		ID:        uuid.New().String(),
		Name:      name,
		Path:      abs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveProject(ctx, project); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	logger.Info("Registered project %q at %s", name, abs)
	return project, nil
}

// Get retrieves a project by name.
func (s *ProjectService) Get(ctx context.Context, name string) (*domain.Project, error) {
	project, err := s.store.GetProjectByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", name, err)
	}
	return project, nil
}

// List returns all registered projects.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// LastRun returns the most recent ingest run for the named project, or
// domain.ErrNotFound if the project was never ingested.
func (s *ProjectService) LastRun(ctx context.Context, name string) (*domain.IngestRun, error) {
	project, err := s.store.GetProjectByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", name, err)
	}
	return s.store.LastIngestRun(ctx, project.ID)
}

// Remove deletes a project registration and its cached vector store.
func (s *ProjectService) Remove(ctx context.Context, name string) error {
	project, err := s.store.GetProjectByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %q: %w", name, domain.ErrNotFound)
		}
		return fmt.Errorf("get project: %w", err)
	}

	if err := s.stores.Remove(project.Path); err != nil {
		return fmt.Errorf("remove vector store: %w", err)
	}
	if err := s.store.DeleteProject(ctx, project.ID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	logger.Info("Removed project %q", name)
	return nil
}
