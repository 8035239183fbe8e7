package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage lands exports somewhere the user can pick them up. The web UI
// streams exports as downloads; headless intake paths write them here
// instead.
type Storage interface {
	// Save writes an export and returns the path it was written to.
	Save(export *Export) (string, error)
}

// LocalStorage implements Storage on the local filesystem.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	return &LocalStorage{
		basePath: basePath,
	}, nil
}

// Save writes the export under its own filename.
func (l *LocalStorage) Save(export *Export) (string, error) {
	path := filepath.Join(l.basePath, export.Filename)
	if err := os.WriteFile(path, export.Data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
