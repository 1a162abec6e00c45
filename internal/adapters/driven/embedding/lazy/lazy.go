// Package lazy wraps an embedding service with once-only initialisation.
// The process-wide model handle is constructed on first use and shared by
// every caller; construction is owned by the composition root, never
// reached through a global.
package lazy

import (
	"context"
	"fmt"
	"sync"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Factory constructs the underlying embedding service. It is called at
// most once, on first use.
type Factory func(ctx context.Context) (driven.EmbeddingService, error)

// Service defers construction of an embedding service until first use.
// A failed construction is remembered: every subsequent call fails with
// domain.ErrEmbeddingUnavailable rather than retrying or silently
// degrading to zero vectors.
type Service struct {
	factory Factory

	// dimensions and model identify the service before initialisation;
	// stores need them to validate caches without forcing a model load.
	dimensions int
	model      string

	once    sync.Once
	inner   driven.EmbeddingService
	initErr error
}

// New creates a lazily-initialised embedding service. The dimensions and
// model name must match what the factory will produce.
func New(model string, dimensions int, factory Factory) *Service {
	return &Service{
		factory:    factory,
		dimensions: dimensions,
		model:      model,
	}
}

// service initialises the underlying handle exactly once.
func (s *Service) service(ctx context.Context) (driven.EmbeddingService, error) {
	s.once.Do(func() {
		logger.Debug("Initialising embedding service (model %s)", s.model)
		s.inner, s.initErr = s.factory(ctx)
		if s.initErr != nil {
			logger.Warn("Embedding service initialisation failed: %v", s.initErr)
		}
	})
	if s.initErr != nil {
		return nil, fmt.Errorf("initialise embedding service: %v: %w", s.initErr, domain.ErrEmbeddingUnavailable)
	}
	return s.inner, nil
}

// Embed generates a vector embedding for the given text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	inner, err := s.service(ctx)
	if err != nil {
		return nil, err
	}
	return inner.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	inner, err := s.service(ctx)
	if err != nil {
		return nil, err
	}
	return inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model.
func (s *Service) ModelName() string {
	return s.model
}

// Ping initialises the service if needed and checks reachability.
func (s *Service) Ping(ctx context.Context) error {
	inner, err := s.service(ctx)
	if err != nil {
		return err
	}
	return inner.Ping(ctx)
}

// Close releases the underlying service if it was ever initialised.
func (s *Service) Close() error {
	if s.inner != nil {
		return s.inner.Close()
	}
	return nil
}
