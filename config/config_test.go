package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create a test config file
	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
analysis:
  target_sections: 8
  peak_threshold_ratio: 1.5
storage:
  type: local
  reports_dir: out/reports
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the config
	cfg, err := Load(configPath)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, 8, cfg.Analysis.TargetSections)
	assert.Equal(t, 1.5, cfg.Analysis.PeakThresholdRatio)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "out/reports", cfg.Storage.ReportsDir)
}

func TestLoadDefaults(t *testing.T) {
	tempDir := t.TempDir()

	// An empty file should still produce a fully defaulted config
	configPath := filepath.Join(tempDir, "empty_config.yaml")
	err := os.WriteFile(configPath, []byte(""), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, 22050, cfg.Analysis.SampleRate)
	assert.Equal(t, 2048, cfg.Analysis.FrameSize)
	assert.Equal(t, 512, cfg.Analysis.HopSize)
	assert.Equal(t, 10, cfg.Analysis.TargetSections)
	assert.Equal(t, 1.2, cfg.Analysis.PeakThresholdRatio)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "reports", cfg.Storage.ReportsDir)
}

func TestLoadNonExistentFile(t *testing.T) {
	// Test loading a non-existent config file
	cfg, err := Load("non_existent_file.yaml")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create an invalid YAML file
	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
invalid_yaml: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the invalid config
	cfg, err := Load(configPath)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadRejectsBadStorageType(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "bad_storage.yaml")
	configContent := `
storage:
  type: s3
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadGCSOptions(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "gcs_config.yaml")
	configContent := `
storage:
  type: gcs
  bucket: my-reports
  object_prefix: timing
  public_base_url: https://storage.googleapis.com/my-reports
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.NoError(t, err)
	assert.Equal(t, "gcs", cfg.Storage.Type)
	assert.Equal(t, "my-reports", cfg.Storage.Bucket)
	assert.Equal(t, "timing", cfg.Storage.ObjectPrefix)
	assert.Equal(t, "https://storage.googleapis.com/my-reports", cfg.Storage.PublicBaseURL)
}

func TestLoadRejectsGCSWithoutBucket(t *testing.T) {
	tempDir := t.TempDir()

	configPath := filepath.Join(tempDir, "gcs_no_bucket.yaml")
	configContent := `
storage:
  type: gcs
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	cfg, err := Load(configPath)

	assert.Error(t, err)
	assert.Nil(t, cfg)
}
