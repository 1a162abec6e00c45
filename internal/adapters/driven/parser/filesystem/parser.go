package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
	"github.com/regulaware/dossier-cli/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// mimeTypes maps supported file extensions to their MIME type.
var mimeTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
}

// Parser reads project folders from the local filesystem.
type Parser struct{}

// New creates a new filesystem parser.
func New() *Parser {
	return &Parser{}
}

// Supported reports whether the parser handles the given file path.
func (p *Parser) Supported(path string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ParseProject reads every supported file under the project path.
// Hidden files and directories are skipped, as are unsupported extensions.
// Results are ordered by path so repeated runs are deterministic.
func (p *Parser) ParseProject(ctx context.Context, projectPath string) ([]domain.ParsedDocument, error) {
	info, err := os.Stat(projectPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project path %s: %w", projectPath, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat project path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project path %s is not a directory: %w", projectPath, domain.ErrInvalidInput)
	}

	var paths []string
	err = filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != projectPath {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && p.Supported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk project path: %w", err)
	}
	sort.Strings(paths)

	docs := make([]domain.ParsedDocument, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := p.ParseFile(ctx, path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		docs = append(docs, *doc)
	}

	logger.Debug("Parsed %d documents from %s", len(docs), projectPath)
	return docs, nil
}

// ParseFile reads a single file into a parsed document.
func (p *Parser) ParseFile(_ context.Context, path string) (*domain.ParsedDocument, error) {
	if !p.Supported(path) {
		return nil, fmt.Errorf("unsupported file type %s: %w", filepath.Ext(path), domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read file: %w", err)
	}

	mime := mimeTypes[strings.ToLower(filepath.Ext(path))]

	// HTML is flattened to text; front matter only applies to plain
	// text and markdown.
	var front map[string]string
	content := string(data)
	if mime == "text/html" {
		content = htmlToText(content)
	} else {
		front, content = splitFrontMatter(content)
	}
	meta := extractMetadata(path, content, front)

	doc := &domain.ParsedDocument{
		ID:       uuid.New().String(),
		Path:     path,
		FileName: filepath.Base(path),
		Content:  content,
		MIMEType: mime,
		Category: detectCategory(path, front),
		Metadata: meta,
	}
	return doc, nil
}

// procedureDirs and standardDirs are directory names that assign a
// category to everything beneath them.
var (
	procedureDirs = map[string]bool{
		"procedures":        true,
		"sops":              true,
		"sop":               true,
		"work-instructions": true,
	}
	standardDirs = map[string]bool{
		"standards": true,
		"norms":     true,
	}
)

// detectCategory resolves a document's retrieval category. An explicit
// front-matter category wins; otherwise directory names and file-name
// prefixes decide, defaulting to context.
func detectCategory(path string, front map[string]string) domain.Category {
	if c := domain.Category(front["category"]); c.Valid() {
		return c
	}

	for _, part := range strings.Split(filepath.Dir(path), string(filepath.Separator)) {
		name := strings.ToLower(part)
		if procedureDirs[name] {
			return domain.CategoryProcedure
		}
		if standardDirs[name] {
			return domain.CategoryStandard
		}
	}

	base := strings.ToUpper(filepath.Base(path))
	switch {
	case strings.HasPrefix(base, "SOP"), strings.HasPrefix(base, "WI-"):
		return domain.CategoryProcedure
	case strings.HasPrefix(base, "ISO"), strings.HasPrefix(base, "IEC"), strings.HasPrefix(base, "EN-"):
		return domain.CategoryStandard
	}

	return domain.CategoryContext
}
