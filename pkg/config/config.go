// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when no env file is named
const DefaultEnvFile = ".env"

// Config represents the application configuration
type Config struct {
	Paths    PathsConfig
	Database *DatabaseConfig

	// Load settings
	LoadBatchSize int `validate:"gt=0"`

	// Cleaning settings
	UserDedupPolicy string `validate:"oneof=none first last reject"`

	// Logging
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json console"`
}

// PathsConfig holds the input and output locations of the pipeline
type PathsConfig struct {
	RawJSONPath     string `validate:"required"` // Directory holding receipts.json, brands.json, users.json
	CleanedJSONPath string `validate:"required"` // Directory for the JSON exports
	CSVPath         string `validate:"required"` // Directory for the CSV exports
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig seeds the environment from envFile, when it exists, and loads
// configuration from environment variables. Variables already set in the
// environment win over the file.
func LoadConfig(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	cfg := &Config{
		Paths: PathsConfig{
			RawJSONPath:     getEnv("RAW_JSON_PATH", "data/raw"),
			CleanedJSONPath: getEnv("CLEANED_JSON_PATH", "data/cleaned"),
			CSVPath:         getEnv("CSV_PATH", "data/csv"),
		},
		LoadBatchSize:   getEnvAsInt("LOAD_BATCH_SIZE", 1000),
		UserDedupPolicy: strings.ToLower(getEnv("USER_DEDUP_POLICY", "none")),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	cfg.Database = dbConfig

	return cfg, nil
}

// ValidateForClean checks the settings the clean stage needs
func (c *Config) ValidateForClean() error {
	if err := validate.Struct(c.Paths); err != nil {
		return fmt.Errorf("invalid path configuration: %w", err)
	}
	if err := validate.StructExcept(c, "Database", "Paths"); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateForLoad checks the settings the load stage needs
func (c *Config) ValidateForLoad() error {
	if err := c.ValidateForClean(); err != nil {
		return err
	}
	if c.Database == nil {
		return errors.New("database configuration is required")
	}
	if err := validate.Struct(c.Database); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
