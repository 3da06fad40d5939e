// Package blobstore provides a local-directory implementation of
// domain.FileStore. Files are a derived cache of photo bytes held in the
// activities table; losing the directory loses nothing.
package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmvalente/drivelog/internal/domain"
)

// Local stores blobs as flat files under a base directory.
type Local struct {
	basePath string
}

var _ domain.FileStore = (*Local)(nil)

// NewLocal creates the base directory if needed and returns the store.
func NewLocal(basePath string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &Local{basePath: basePath}, nil
}

// Save writes data under key. Writing the same key twice simply overwrites
// with identical content, so racing materializations are harmless.
func (s *Local) Save(ctx context.Context, key string, data []byte) error {
	path, err := s.safeJoin(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

func (s *Local) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.safeJoin(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

func (s *Local) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.safeJoin(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat blob: %w", err)
	}
	return true, nil
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
func (s *Local) safeJoin(key string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: bad storage key", domain.ErrInvalidInput)
	}
	return absPath, nil
}
