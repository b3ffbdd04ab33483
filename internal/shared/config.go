package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// DefaultThreshold is the similarity score (0-100) below which a pair is reported as a mismatch.
const DefaultThreshold = 85

// Environment variables applied on top of the TOML file.
const (
	EnvRoot      = "CRATECHECK_ROOT"
	EnvThreshold = "CRATECHECK_THRESHOLD"
	EnvLogLevel  = "CRATECHECK_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Library  LibraryConfig  `toml:"library"`
	Output   OutputConfig   `toml:"output"`
	Matcher  MatcherConfig  `toml:"matcher"`
	Scan     ScanConfig     `toml:"scan"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// LibraryConfig locates the three track sources.
type LibraryConfig struct {
	Root         string   `toml:"root"`
	Crate        string   `toml:"crate"`
	StreamingCSV string   `toml:"streaming_csv"`
	Ignore       []string `toml:"ignore"`
	Extensions   []string `toml:"extensions"`
}

// OutputConfig controls where tracklists and reports are written.
type OutputConfig struct {
	Dir            string `toml:"dir"`
	OwnedTracklist string `toml:"owned_tracklist"`
	CrateTracklist string `toml:"crate_tracklist"`
	IndexRows      bool   `toml:"index_rows"`
}

// MatcherConfig tunes the fuzzy mismatch pass.
type MatcherConfig struct {
	Threshold int `toml:"threshold"`
	Workers   int `toml:"workers"`
	WarnPairs int `toml:"warn_pairs"`
}

// ScanConfig tunes the metadata scan.
type ScanConfig struct {
	RateLimit float64 `toml:"rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig sets the logger level by name (debug, info, warn, error).
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads a .env file when present and applies CRATECHECK_* variables to config.
func LoadEnv(config *Config, envFile string) error {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, envFile, err)
			}
		}
	}

	if root := os.Getenv(EnvRoot); root != "" {
		config.Library.Root = root
	}
	if raw := os.Getenv(EnvThreshold); raw != "" {
		threshold, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvThreshold, raw)
		}
		config.Matcher.Threshold = threshold
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		config.Log.Level = level
	}
	return nil
}

// Validate checks the values the pipeline depends on.
func (c *Config) Validate() error {
	if c.Library.Root == "" {
		return fmt.Errorf("%w: library.root is required", ErrInvalidConfig)
	}
	if c.Matcher.Threshold < 0 || c.Matcher.Threshold > 100 {
		return fmt.Errorf("%w: matcher.threshold must be within 0-100, got %d", ErrInvalidConfig, c.Matcher.Threshold)
	}
	if c.Matcher.Workers < 1 {
		return fmt.Errorf("%w: matcher.workers must be at least 1, got %d", ErrInvalidConfig, c.Matcher.Workers)
	}
	if c.Scan.RateLimit < 0 {
		return fmt.Errorf("%w: scan.rate_limit cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// CratePath returns the candidate crate folder, defaulting to <root>/crate_to_check.
func (c *Config) CratePath() string {
	if c.Library.Crate != "" {
		return c.Library.Crate
	}
	return filepath.Join(c.Library.Root, "crate_to_check")
}

// OutputPath joins name onto the configured output directory.
func (c *Config) OutputPath(name string) string {
	if filepath.IsAbs(name) || c.Output.Dir == "" {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}
