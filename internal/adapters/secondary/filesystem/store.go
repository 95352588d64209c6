// Package filesystem resolves model artifacts under a local base directory.
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ml-prediction-service/internal/core/domain"
	ports "ml-prediction-service/internal/core/ports/output"
)

type Store struct {
	baseDir   string
	extension string
}

var _ ports.ArtifactStore = (*Store)(nil)

// New returns a Store rooted at baseDir. A relative baseDir is resolved
// against the directory of the running executable when the artifact
// directory exists there, otherwise against the working directory.
func New(baseDir, extension string) (*Store, error) {
	dir, err := ResolvePath(baseDir)
	if err != nil {
		return nil, err
	}
	return &Store{baseDir: dir, extension: extension}, nil
}

func (s *Store) BaseDir() string {
	return s.baseDir
}

func (s *Store) Path(id domain.ModelID) string {
	return filepath.Join(s.baseDir, string(id)+s.extension)
}

func (s *Store) Exists(id domain.ModelID) (bool, error) {
	info, err := os.Stat(s.Path(id))
	switch {
	case err == nil:
		if info.IsDir() {
			return false, fmt.Errorf("%s is a directory", s.Path(id))
		}
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat artifact: %w", err)
	}
}

// ResolvePath makes a relative path absolute the same way New resolves the
// artifact directory: next to the running executable when something exists
// there, otherwise under the working directory.
func ResolvePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), p)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return abs, nil
}
