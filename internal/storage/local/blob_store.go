// Package local implements a local filesystem page store.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/seo-snapshot-generator/internal/snapshot"
)

// Config captures the parameters for the local filesystem page store.
type Config struct {
	// BaseDir is the root directory where pages will be stored.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// PageStore writes rendered pages to the local filesystem.
type PageStore struct {
	baseDir string
}

var _ snapshot.PageStore = (*PageStore)(nil)

// New creates a new local filesystem-backed page store.
func New(cfg Config) (*PageStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory path is not a directory")
	}

	// Check for write permissions.
	testFile := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &PageStore{baseDir: filepath.Clean(cfg.BaseDir)}, nil
}

// BaseDir returns the directory pages are written under.
func (s *PageStore) BaseDir() string {
	return s.baseDir
}

// PutObject writes data through a temp file so readers never see a partial
// page, and returns a file:// URI. Without Upsert an existing page is kept and
// snapshot.ErrPageExists is returned. Content type and metadata have no
// filesystem representation and are ignored.
func (s *PageStore) PutObject(_ context.Context, name string, data []byte, opts snapshot.PutOptions) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("object name is required")
	}

	fullPath := filepath.Clean(filepath.Join(s.baseDir, name))
	if !strings.HasPrefix(fullPath, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected")
	}
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".page-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	// #nosec G302 -- pages are public documents.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set file mode: %w", err)
	}

	if opts.Upsert {
		if err := os.Rename(tmpName, fullPath); err != nil {
			return "", fmt.Errorf("failed to move file into place: %w", err)
		}
	} else if err := os.Link(tmpName, fullPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("write %s: %w", name, snapshot.ErrPageExists)
		}
		return "", fmt.Errorf("failed to link file into place: %w", err)
	}

	return fmt.Sprintf("file://%s", fullPath), nil
}
