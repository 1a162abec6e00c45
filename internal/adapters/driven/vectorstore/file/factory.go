package file

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/regulaware/dossier-cli/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.VectorStoreFactory = (*Factory)(nil)

// Factory creates file-backed stores under a shared cache directory, one
// file per project path.
type Factory struct {
	cacheDir     string
	modelVersion string
	dimensions   int
}

// NewFactory creates a store factory. If cacheDir is empty, stores go
// under ~/.dossier/stores.
func NewFactory(cacheDir, modelVersion string, dimensions int) (*Factory, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cacheDir = filepath.Join(home, ".dossier", "stores")
	}
	if err := os.MkdirAll(cacheDir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Factory{
		cacheDir:     cacheDir,
		modelVersion: modelVersion,
		dimensions:   dimensions,
	}, nil
}

// StoreFor returns an empty store bound to the project's cache file.
func (f *Factory) StoreFor(projectPath string) driven.VectorStore {
	return New(f.storePath(projectPath), f.modelVersion, f.dimensions)
}

// Remove deletes the project's cache file. A missing file is fine.
func (f *Factory) Remove(projectPath string) error {
	err := os.Remove(f.storePath(projectPath))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove store file: %w", err)
	}
	return nil
}

// storePath derives a stable file name from the project path.
func (f *Factory) storePath(projectPath string) string {
	sum := sha1.Sum([]byte(projectPath))
	return filepath.Join(f.cacheDir, hex.EncodeToString(sum[:])+".json")
}
