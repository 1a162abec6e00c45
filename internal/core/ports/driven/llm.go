package driven

import (
	"context"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// Generator is the black-box text-generation capability invoked after
// retrieval has assembled context. This is an optional service - when
// nil, generation is disabled and retrieval still works.
type Generator interface {
	// Generate produces text for the prompt and reports token usage.
	Generate(ctx context.Context, prompt string) (string, domain.TokenUsage, error)

	// ModelName returns the generation model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}
