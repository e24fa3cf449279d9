package config

import (
	"os"
	"strconv"
	"time"

	"ghgpipe/internal/errors"
)

// Config represents the complete pipeline configuration
type Config struct {
	Paths    PathConfig
	Batch    BatchConfig
	Detector DetectorConfig
}

// PathConfig holds file system paths
type PathConfig struct {
	// InputDir is the root holding one subdirectory per country.
	InputDir string
	// OutputDir receives the committed country datasets.
	OutputDir string
	// ManifestDB is the sqlite file recording per-file outcomes.
	ManifestDB string
	// VocabFile optionally overrides the built-in vocabularies.
	VocabFile string
}

// BatchConfig holds orchestration settings
type BatchConfig struct {
	Workers     int
	FileTimeout time.Duration
	// SheetPrefix selects which worksheets of a workbook are processed.
	SheetPrefix string
}

// DetectorConfig holds header detection tuning
type DetectorConfig struct {
	// Lookahead is how many rows from the top are scanned for the header.
	Lookahead int
	// MinHeaderRow is the first row index eligible to start a header band.
	MinHeaderRow int
	// MaxHeaderRows bounds the header band height before the detector
	// refuses to guess.
	MaxHeaderRows int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Paths: PathConfig{
			InputDir:   getEnvOrDefault("INPUT_DIR", "./data/unfccc"),
			OutputDir:  getEnvOrDefault("OUTPUT_DIR", "./processed_data"),
			ManifestDB: getEnvOrDefault("MANIFEST_DB", "./processed_data/manifest.db"),
			VocabFile:  getEnvOrDefault("VOCAB_FILE", ""),
		},
		Batch: BatchConfig{
			Workers:     getEnvIntOrDefault("WORKERS", 4),
			FileTimeout: getEnvDurationOrDefault("FILE_TIMEOUT", 2*time.Minute),
			SheetPrefix: getEnvOrDefault("SHEET_PREFIX", "Summary"),
		},
		Detector: DetectorConfig{
			Lookahead:     getEnvIntOrDefault("HEADER_LOOKAHEAD", 15),
			MinHeaderRow:  getEnvIntOrDefault("MIN_HEADER_ROW", 1),
			MaxHeaderRows: getEnvIntOrDefault("MAX_HEADER_ROWS", 3),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Paths.InputDir == "" {
		return errors.ConfigInvalid("input directory is required")
	}
	if config.Paths.OutputDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	if config.Batch.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be at least 1")
	}
	if config.Detector.MaxHeaderRows < 1 {
		return errors.ConfigInvalid("MAX_HEADER_ROWS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
