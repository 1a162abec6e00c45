// Package sqlite provides the SQLite-backed project registry.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/regulaware/dossier-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/regulaware/dossier-cli/internal/core/domain"
	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore persists projects and ingest runs in SQLite.
type ProjectStore struct {
	db   *sql.DB
	path string
}

// NewProjectStore opens (and migrates) the registry database. If dataDir
// is empty, defaults to ~/.dossier/data/registry.db.
func NewProjectStore(dataDir string) (*ProjectStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".dossier", "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "registry.db")

	// WAL mode for better concurrency between watch and query commands.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &ProjectStore{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *ProjectStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *ProjectStore) Path() string {
	return s.path
}

// SaveProject stores or updates a project.
func (s *ProjectStore) SaveProject(ctx context.Context, project *domain.Project) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			updated_at = excluded.updated_at
	`, project.ID, project.Name, project.Path,
		project.CreatedAt.Format(time.RFC3339Nano),
		project.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *ProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	return scanProject(row)
}

// GetProjectByName retrieves a project by its unique name.
func (s *ProjectStore) GetProjectByName(ctx context.Context, name string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, path, created_at, updated_at
		FROM projects WHERE name = ?
	`, name)
	return scanProject(row)
}

// ListProjects returns all projects ordered by name.
func (s *ProjectStore) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, path, created_at, updated_at
		FROM projects ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project; ingest runs cascade.
func (s *ProjectStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveIngestRun records a completed ingest run.
func (s *ProjectStore) SaveIngestRun(ctx context.Context, run *domain.IngestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs
			(id, project_id, document_count, chunk_count, fingerprint, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.ProjectID, run.DocumentCount, run.ChunkCount, run.Fingerprint,
		run.StartedAt.Format(time.RFC3339Nano),
		run.FinishedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving ingest run: %w", err)
	}
	return nil
}

// LastIngestRun returns the most recent run for a project.
func (s *ProjectStore) LastIngestRun(ctx context.Context, projectID string) (*domain.IngestRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, document_count, chunk_count, fingerprint, started_at, finished_at
		FROM ingest_runs
		WHERE project_id = ?
		ORDER BY finished_at DESC
		LIMIT 1
	`, projectID)

	var run domain.IngestRun
	var started, finished string
	err := row.Scan(&run.ID, &run.ProjectID, &run.DocumentCount, &run.ChunkCount,
		&run.Fingerprint, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning ingest run: %w", err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("parsing finished_at: %w", err)
	}
	return &run, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	var created, updated string
	err := row.Scan(&p.ID, &p.Name, &p.Path, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

// migrate applies any pending .up.sql files in version order.
func (s *ProjectStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		payload, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(payload)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}
