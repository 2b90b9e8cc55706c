package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/marcw/timing-analyze/config"
)

// Storage defines the interface for handling report artifact storage.
// Reports are always rendered to a local directory first; Publish moves
// them to their final home (a no-op for local storage).
type Storage interface {
	// CreateReportDir creates (and returns) the local directory report
	// artifacts for the given slug are written into.
	CreateReportDir(slug string) (string, error)

	// Publish finalizes a report's artifacts and returns their stored
	// locations.
	Publish(slug string) ([]string, error)

	GetReader(path string) (io.ReadCloser, error)

	GetWriter(path string) (io.WriteCloser, error)

	FileExists(path string) bool

	ListFiles(dir string, pattern string) ([]string, error)

	Cleanup() error
}

// New creates the storage backend named by the configuration.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocalReportStorage(cfg.Storage.ReportsDir)
	case "gcs":
		return NewGCSReportStorage(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix,
			cfg.Storage.ReportsDir, cfg.Storage.CredentialsFile, cfg.Storage.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
