package driven

import (
	"context"

	"github.com/regulaware/dossier-cli/internal/core/domain"
)

// DocumentParser turns the raw files of a project folder into parsed
// documents. The heavyweight extraction (PDF, DOCX, OCR) lives outside
// this repository; the bundled filesystem adapter covers plain text and
// markdown so the CLI is usable on its own.
type DocumentParser interface {
	// ParseProject reads every supported file under the project path.
	// Unsupported files are skipped, not errors.
	ParseProject(ctx context.Context, projectPath string) ([]domain.ParsedDocument, error)

	// ParseFile reads a single file. Returns domain.ErrNotFound for
	// missing files and domain.ErrInvalidInput for unsupported types.
	ParseFile(ctx context.Context, path string) (*domain.ParsedDocument, error)

	// Supported reports whether the parser handles the given file path.
	Supported(path string) bool
}
