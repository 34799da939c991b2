package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Storage StorageConfig `toml:"storage"`
	Catalog CatalogConfig `toml:"catalog"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	BaseURL           string  `toml:"base_url" env:"SHELF_API_URL"`
	TimeoutSeconds    int     `toml:"timeout_seconds" env:"SHELF_API_TIMEOUT_SECONDS"`
	RequestsPerSecond float64 `toml:"requests_per_second" env:"SHELF_API_RPS"`
}

// Timeout returns the per-request timeout, or zero when unset.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig selects and locates the durable key-value storage.
type StorageConfig struct {
	Driver     string `toml:"driver" env:"SHELF_STORAGE_DRIVER"`
	Path       string `toml:"path" env:"SHELF_STORAGE_PATH"`
	BoltBucket string `toml:"bolt_bucket" env:"SHELF_STORAGE_BOLT_BUCKET"`
}

// CatalogConfig contains settings for catalog search results.
type CatalogConfig struct {
	PlaceholderCover string `toml:"placeholder_cover" env:"SHELF_PLACEHOLDER_COVER"`
	ResultLimit      int    `toml:"result_limit" env:"SHELF_RESULT_LIMIT"`
	BookPageURL      string `toml:"book_page_url" env:"SHELF_BOOK_PAGE_URL"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level" env:"SHELF_LOG_LEVEL"`
	File  string `toml:"file" env:"SHELF_LOG_FILE"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

// ApplyEnv loads a .env file when present and overrides config fields from SHELF_* environment variables.
func ApplyEnv(config *Config, envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load .env file: %w", err)
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the fields the client cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	switch c.Storage.Driver {
	case "sqlite", "bolt", "memory":
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Storage.Driver != "memory" && c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required", ErrInvalidConfig)
	}
	if c.Catalog.ResultLimit <= 0 {
		return fmt.Errorf("%w: catalog.result_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
