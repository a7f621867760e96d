// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Source
	APIKey string `json:"api_key,omitempty" validate:"required"` // Sorsa API key

	// Storage: a postgres:// URL or a SQLite file path
	DatabaseURL string `json:"database_url,omitempty" validate:"required"`

	// Signal registry file; empty uses the registry bundled with the binary
	RegistryPath string `json:"registry_path,omitempty"`

	// Run tuning
	BatchSize      int     `json:"batch_size,omitempty" validate:"min=1"`
	PaceSeconds    float64 `json:"pace_seconds,omitempty" validate:"min=0"`
	MaxFollowers   int     `json:"max_followers,omitempty" validate:"min=0"`
	MaxAgeWeeks    int     `json:"max_age_weeks,omitempty" validate:"min=0"`
	ScoreThreshold int     `json:"score_threshold,omitempty" validate:"min=0"`

	// Publishing
	OutputDir         string `json:"output_dir,omitempty"`         // CSV destination directory
	SheetsID          string `json:"sheets_id,omitempty"`          // Google Sheets spreadsheet ID
	SheetsCredentials string `json:"sheets_credentials,omitempty"` // Service-account credentials JSON

	// Logging
	LogFile  string `json:"log_file,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
}

// Defaults returns the standard weekly-run configuration.
func Defaults() Config {
	return Config{
		DatabaseURL:    "crypto_intelligence.db",
		BatchSize:      20,
		PaceSeconds:    1.0,
		MaxFollowers:   5000,
		MaxAgeWeeks:    104,
		ScoreThreshold: 200,
		LogLevel:       "INFO",
	}
}

// FromEnv returns Defaults overlaid with values from the environment.
func FromEnv() Config {
	cfg := Defaults()
	cfg.APIKey = os.Getenv("SORSA_API_KEY")
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RegistryPath = os.Getenv("SCOUT_REGISTRY")
	cfg.OutputDir = os.Getenv("SCOUT_OUTPUT_DIR")
	cfg.SheetsID = os.Getenv("GOOGLE_SHEETS_ID")
	cfg.SheetsCredentials = os.Getenv("GOOGLE_SHEETS_CREDS")
	cfg.LogFile = os.Getenv("SCOUT_LOG_FILE")
	cfg.LogLevel = getEnv("SCOUT_LOG_LEVEL", cfg.LogLevel)
	return cfg
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the merged configuration has valid values.
// It is meant to run after MergeWithDefaults, once flags and environment
// have been applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.SheetsID != "" && c.SheetsCredentials == "" {
		return fmt.Errorf("config error: 'sheets_id' is set but 'sheets_credentials' is empty")
	}

	// Validate file paths exist (if specified)
	if c.RegistryPath != "" {
		if _, err := os.Stat(c.RegistryPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: registry file not found: %s", c.RegistryPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RegistryPath == "" {
		result.RegistryPath = defaults.RegistryPath
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.SheetsID == "" {
		result.SheetsID = defaults.SheetsID
	}
	if result.SheetsCredentials == "" {
		result.SheetsCredentials = defaults.SheetsCredentials
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Numeric fields: use default if zero. An unset value cannot be told
	// apart from an explicit zero here, so explicit zeros must come from
	// CLI flags, which always win.
	if result.BatchSize == 0 {
		result.BatchSize = defaults.BatchSize
	}
	if result.PaceSeconds == 0 {
		result.PaceSeconds = defaults.PaceSeconds
	}
	if result.MaxFollowers == 0 {
		result.MaxFollowers = defaults.MaxFollowers
	}
	if result.MaxAgeWeeks == 0 {
		result.MaxAgeWeeks = defaults.MaxAgeWeeks
	}
	if result.ScoreThreshold == 0 {
		result.ScoreThreshold = defaults.ScoreThreshold
	}

	return result
}

// Pace returns the per-signal pacing delay.
func (c *Config) Pace() time.Duration {
	return time.Duration(c.PaceSeconds * float64(time.Second))
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
