// Package config resolves the library's settings from command-line
// overrides, the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when Overrides.EnvFile is empty.
const DefaultEnvFile = ".env"

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Search  SearchConfig
	Export  ExportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds the on-disk locations of the library.
type StorageConfig struct {
	// DataPath is the root for the database and media (default: ~/Presenter).
	DataPath string
	// DBPath is the SQLite database file (default: {data}/presenter.db).
	DBPath string
	// MediaPath holds imported images and PDFs (default: {data}/UserDataFiles).
	MediaPath string
}

// SearchConfig holds result presentation settings.
type SearchConfig struct {
	// SummaryLength is the maximum rune count of a summary line (default: 80).
	SummaryLength int
}

// ExportConfig holds slide export settings.
type ExportConfig struct {
	// TemplatePath is an optional YAML presentation template.
	TemplatePath string
}

// Overrides carries values set explicitly on the command line.
// Empty strings and zero values mean "not set".
type Overrides struct {
	EnvFile       string
	Environment   string
	LogLevel      string
	DataPath      string
	DBPath        string
	MediaPath     string
	SummaryLength int
	TemplatePath  string
}

// Load resolves every setting, highest precedence first, from o, the
// process environment, the .env file and the built-in defaults, then
// validates the result.
func Load(o Overrides) (*Config, error) {
	envFile := o.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	// godotenv never overwrites variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(o.Environment, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(o.LogLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataPath:  getConfigValue(o.DataPath, "DATA_PATH", ""),
			DBPath:    getConfigValue(o.DBPath, "DB_PATH", ""),
			MediaPath: getConfigValue(o.MediaPath, "MEDIA_PATH", ""),
		},
		Export: ExportConfig{
			TemplatePath: getConfigValue(o.TemplatePath, "SLIDE_TEMPLATE", ""),
		},
	}

	var flagLength string
	if o.SummaryLength != 0 {
		flagLength = strconv.Itoa(o.SummaryLength)
	}
	length, err := getIntConfigValue(flagLength, "SUMMARY_LENGTH", 80)
	if err != nil {
		return nil, err
	}
	cfg.Search.SummaryLength = length

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	if cfg.Export.TemplatePath != "" {
		expanded, err := expandPath(cfg.Export.TemplatePath, "")
		if err != nil {
			return nil, fmt.Errorf("invalid template path: %w", err)
		}
		cfg.Export.TemplatePath = expanded
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

var (
	environments = []string{"development", "staging", "production"}
	logLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate reports the first missing or out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.App.Environment == "":
		return errors.New("ENV is required")
	case !slices.Contains(environments, c.App.Environment):
		return fmt.Errorf("invalid environment %q (want one of %s)", c.App.Environment, strings.Join(environments, ", "))
	case !slices.Contains(logLevels, strings.ToLower(c.Logger.Level)):
		return fmt.Errorf("invalid log level %q (want one of %s)", c.Logger.Level, strings.Join(logLevels, ", "))
	case c.Storage.DataPath == "", c.Storage.DBPath == "", c.Storage.MediaPath == "":
		return errors.New("storage paths must not be empty")
	case c.Search.SummaryLength <= 0:
		return fmt.Errorf("invalid summary length %d (must be positive)", c.Search.SummaryLength)
	}
	return nil
}

// expandStoragePaths expands ~ and makes the storage paths absolute.
// The database and media paths default to locations under the data path.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	data, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "Presenter"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = data

	db, err := expandPath(c.Storage.DBPath, filepath.Join(data, "presenter.db"))
	if err != nil {
		return err
	}
	c.Storage.DBPath = db

	media, err := expandPath(c.Storage.MediaPath, filepath.Join(data, "UserDataFiles"))
	if err != nil {
		return err
	}
	c.Storage.MediaPath = media
	return nil
}

// expandPath resolves a leading ~ and returns the cleaned absolute path.
// An empty path yields defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

// getConfigValue returns flagValue, else $envKey, else defaultValue.
// Empty counts as unset at every level.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	for _, v := range []string{flagValue, os.Getenv(envKey)} {
		if v != "" {
			return v
		}
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := strings.TrimSpace(getConfigValue(flagValue, envKey, ""))
	if strValue == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return result, nil
}
