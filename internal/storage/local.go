package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalReportStorage implements the Storage interface for the local filesystem
type LocalReportStorage struct {
	reportsDir string
}

// NewLocalReportStorage creates a new local report storage instance
func NewLocalReportStorage(reportsDir string) (*LocalReportStorage, error) {
	if err := os.MkdirAll(reportsDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create reports directory %s: %w", reportsDir, err)
	}

	return &LocalReportStorage{reportsDir: reportsDir}, nil
}

// ReportsDir returns the root directory reports are stored under.
func (s *LocalReportStorage) ReportsDir() string {
	return s.reportsDir
}

// CreateReportDir creates the directory for one report's artifacts
func (s *LocalReportStorage) CreateReportDir(slug string) (string, error) {
	dir := filepath.Join(s.reportsDir, slug)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	return dir, nil
}

// Publish returns the artifacts already in place; local reports are
// written directly to their final location.
func (s *LocalReportStorage) Publish(slug string) ([]string, error) {
	return s.ListFiles(filepath.Join(s.reportsDir, slug), "")
}

// Cleanup removes nothing for local storage; reports are the output.
func (s *LocalReportStorage) Cleanup() error {
	return nil
}

// GetReader returns a reader for the specified file
func (s *LocalReportStorage) GetReader(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// GetWriter returns a writer for the specified file
func (s *LocalReportStorage) GetWriter(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	return os.Create(path)
}

// FileExists checks if a file exists
func (s *LocalReportStorage) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListFiles lists files in a directory matching a pattern
func (s *LocalReportStorage) ListFiles(dir string, pattern string) ([]string, error) {
	if dir == "" {
		dir = s.reportsDir
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var results []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		// Match pattern (simple prefix for now)
		if pattern != "" && !strings.HasPrefix(file.Name(), pattern) {
			continue
		}

		results = append(results, filepath.Join(dir, file.Name()))
	}

	return results, nil
}
