package config

import (
	"os"
	"strconv"
	"strings"

	"coursemetry/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data   DataConfig
	Model  ModelConfig
	Report ReportConfig
}

// DataConfig holds input dataset settings
type DataConfig struct {
	InputFile string // CSV or XLSX engagement dataset
}

// ModelConfig holds fitting and evaluation settings
type ModelConfig struct {
	Threshold float64 // classification threshold for the confusion matrix
}

// ReportConfig holds rendering settings
type ReportConfig struct {
	OutputDir string
	Formats   []string // any of "console", "html", "xlsx"
	BinCount  int      // histogram bins; 0 means Sturges' rule
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			InputFile: getEnvOrDefault("INPUT_FILE", ""),
		},
		Model: ModelConfig{
			Threshold: getEnvFloatOrDefault("CLASS_THRESHOLD", 0.5),
		},
		Report: ReportConfig{
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "."),
			Formats:   splitFormats(getEnvOrDefault("REPORT_FORMATS", "console")),
			BinCount:  getEnvIntOrDefault("HISTOGRAM_BINS", 0),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Model.Threshold <= 0 || config.Model.Threshold >= 1 {
		return errors.ConfigInvalid("CLASS_THRESHOLD must be strictly between 0 and 1")
	}
	if config.Report.BinCount < 0 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be non-negative")
	}
	for _, f := range config.Report.Formats {
		switch f {
		case "console", "html", "xlsx":
		default:
			return errors.ConfigInvalid("unknown report format: " + f)
		}
	}
	return nil
}

func splitFormats(value string) []string {
	parts := strings.Split(value, ",")
	formats := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			formats = append(formats, trimmed)
		}
	}
	return formats
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
