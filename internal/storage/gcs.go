package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSReportStorage implements the Storage interface for Google Cloud
// Storage. Artifacts are rendered to a local staging directory and
// uploaded on Publish.
type GCSReportStorage struct {
	client        *storage.Client
	bucket        string
	stagingDir    string
	objectPrefix  string
	ctx           context.Context
	publicBaseURL string
}

// NewGCSReportStorage creates a new GCSReportStorage instance. When
// publicBaseURL is non-empty, published artifacts are reported as
// URLs under it instead of bare object names.
func NewGCSReportStorage(ctx context.Context, bucketName, objectPrefix, stagingDir, credentialsFile, publicBaseURL string) (*GCSReportStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// Use application default credentials
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	if err := os.MkdirAll(stagingDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &GCSReportStorage{
		client:        client,
		bucket:        bucketName,
		stagingDir:    stagingDir,
		objectPrefix:  objectPrefix,
		ctx:           ctx,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// CreateReportDir creates the local staging directory for a report
func (s *GCSReportStorage) CreateReportDir(slug string) (string, error) {
	dir := filepath.Join(s.stagingDir, slug)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	return dir, nil
}

// Publish uploads every staged artifact of the report and returns the
// stored object names or public URLs.
func (s *GCSReportStorage) Publish(slug string) ([]string, error) {
	staged, err := s.listLocal(filepath.Join(s.stagingDir, slug), "")
	if err != nil {
		return nil, err
	}

	var published []string
	for _, localPath := range staged {
		objectName := slug + "/" + filepath.Base(localPath)
		stored, err := s.UploadFile(localPath, objectName)
		if err != nil {
			return nil, fmt.Errorf("failed to publish %s: %w", localPath, err)
		}
		published = append(published, stored)
	}

	return published, nil
}

// Cleanup removes the staged artifacts after publishing
func (s *GCSReportStorage) Cleanup() error {
	if err := os.RemoveAll(s.stagingDir); err != nil {
		return fmt.Errorf("failed to cleanup staging directory: %w", err)
	}
	return nil
}

// GetReader returns a reader for a file
func (s *GCSReportStorage) GetReader(path string) (io.ReadCloser, error) {
	// If the path is local (in the staging directory), open the local file
	if strings.HasPrefix(path, s.stagingDir) {
		return os.Open(path)
	}

	return s.client.Bucket(s.bucket).Object(s.objectName(path)).NewReader(s.ctx)
}

// GetWriter returns a writer for a file
func (s *GCSReportStorage) GetWriter(path string) (io.WriteCloser, error) {
	// If the path is local (in the staging directory), create the local file
	if strings.HasPrefix(path, s.stagingDir) {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		return os.Create(path)
	}

	return s.client.Bucket(s.bucket).Object(s.objectName(path)).NewWriter(s.ctx), nil
}

// FileExists checks if a file exists
func (s *GCSReportStorage) FileExists(path string) bool {
	if strings.HasPrefix(path, s.stagingDir) {
		_, err := os.Stat(path)
		return err == nil
	}

	_, err := s.client.Bucket(s.bucket).Object(s.objectName(path)).Attrs(s.ctx)
	return err == nil
}

// ListFiles lists files in a directory matching a pattern
func (s *GCSReportStorage) ListFiles(dir string, pattern string) ([]string, error) {
	// If dir is empty or refers to the staging directory, list local files
	if dir == "" || strings.HasPrefix(dir, s.stagingDir) {
		listDir := s.stagingDir
		if dir != "" {
			listDir = dir
		}
		return s.listLocal(listDir, pattern)
	}

	prefix := dir
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if s.objectPrefix != "" && !strings.HasPrefix(prefix, s.objectPrefix) {
		prefix = s.objectPrefix + "/" + prefix
	}

	it := s.client.Bucket(s.bucket).Objects(s.ctx, &storage.Query{
		Prefix: prefix,
	})

	var results []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}

		// Skip directories (objects ending with /)
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		fileName := filepath.Base(attrs.Name)
		if pattern != "" && !strings.HasPrefix(fileName, pattern) {
			continue
		}

		results = append(results, attrs.Name)
	}

	return results, nil
}

func (s *GCSReportStorage) listLocal(dir, pattern string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var results []string
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if pattern != "" && !strings.HasPrefix(file.Name(), pattern) {
			continue
		}
		results = append(results, filepath.Join(dir, file.Name()))
	}

	return results, nil
}

func (s *GCSReportStorage) objectName(path string) string {
	objectName := strings.TrimPrefix(path, "/")
	if s.objectPrefix != "" {
		objectName = s.objectPrefix + "/" + objectName
	}
	return objectName
}

// UploadFile uploads a local file to GCS
func (s *GCSReportStorage) UploadFile(localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", localPath, err)
	}
	defer f.Close()

	if s.objectPrefix != "" {
		objectName = s.objectPrefix + "/" + objectName
	}

	ctx, cancel := context.WithTimeout(s.ctx, time.Minute*5)
	defer cancel()

	wc := s.client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		return "", fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return s.storedLocation(objectName), nil
}

// storedLocation maps an uploaded object name to the location reported
// back to callers, a public URL when one is configured.
func (s *GCSReportStorage) storedLocation(objectName string) string {
	if s.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.publicBaseURL, objectName)
	}
	return objectName
}

// Close closes the GCS client
func (s *GCSReportStorage) Close() error {
	return s.client.Close()
}
