package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Analysis AnalysisConfig `yaml:"analysis"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
}

type AnalysisConfig struct {
	// SampleRate is the rate audio is resampled to before analysis.
	SampleRate int `yaml:"sample_rate"`

	// FrameSize and HopSize are in samples.
	FrameSize int `yaml:"frame_size"`
	HopSize   int `yaml:"hop_size"`

	// TargetSections is the number of sections the segmenter aims for.
	TargetSections int `yaml:"target_sections"`

	// PeakThresholdRatio scales the mean RMS to form the energy peak threshold.
	PeakThresholdRatio float64 `yaml:"peak_threshold_ratio"`

	// MinSectionSeconds is the minimum spacing between section boundaries.
	MinSectionSeconds float64 `yaml:"min_section_seconds"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	ReportsDir string `yaml:"reports_dir"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`

	// PublicBaseURL, when set, is prepended to uploaded object names so
	// published locations come back as browsable URLs.
	PublicBaseURL string `yaml:"public_base_url"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	applyDefaults(config)

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a config with every field set to its default value.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

func applyDefaults(config *Config) {
	if config.Analysis.SampleRate == 0 {
		config.Analysis.SampleRate = 22050
	}

	if config.Analysis.FrameSize == 0 {
		config.Analysis.FrameSize = 2048
	}

	if config.Analysis.HopSize == 0 {
		config.Analysis.HopSize = 512
	}

	if config.Analysis.TargetSections == 0 {
		config.Analysis.TargetSections = 10
	}

	if config.Analysis.PeakThresholdRatio == 0 {
		config.Analysis.PeakThresholdRatio = 1.2
	}

	if config.Analysis.MinSectionSeconds == 0 {
		config.Analysis.MinSectionSeconds = 5
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "local"
	}

	if config.Storage.ReportsDir == "" {
		config.Storage.ReportsDir = "reports"
	}
}

func validate(config *Config) error {
	if config.Analysis.HopSize > config.Analysis.FrameSize {
		return fmt.Errorf("hop_size (%d) must not exceed frame_size (%d)",
			config.Analysis.HopSize, config.Analysis.FrameSize)
	}

	if config.Storage.Type != "local" && config.Storage.Type != "gcs" {
		return fmt.Errorf("unknown storage type: %s", config.Storage.Type)
	}

	if config.Storage.Type == "gcs" && config.Storage.Bucket == "" {
		return fmt.Errorf("gcs storage requires a bucket")
	}

	return nil
}
