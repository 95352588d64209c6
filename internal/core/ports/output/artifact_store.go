package ports

import (
	"context"

	"ml-prediction-service/internal/core/domain"
)

// ArtifactStore resolves where a model artifact lives on durable storage.
type ArtifactStore interface {
	Path(id domain.ModelID) string

	// Exists reports whether the artifact is present. A non-nil error means
	// the check itself failed (permissions, I/O), not that the file is missing.
	Exists(id domain.ModelID) (bool, error)
}

// ArtifactFetcher copies a model artifact from a remote store to a local path.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, id domain.ModelID, destPath string) error
}
