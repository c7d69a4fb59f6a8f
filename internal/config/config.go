package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Project-Sylos/Specular/internal/query"
	"github.com/Project-Sylos/Specular/internal/types"
)

// DefaultConfig returns a default configuration
func DefaultConfig() types.Config {
	return types.Config{
		Mirror: types.MirrorConfig{
			RootContainerID: types.RootID,
			OutputRootPath:  "./mirror",
			Recursive:       true,
			Concurrency:     8,
		},
		Store: types.StoreConfig{
			DBPath:   "./specular.db",
			PageSize: 1000,
		},
		Seed: types.SeedConfig{
			MaxDepth:      3,
			MinContainers: 1,
			MaxContainers: 3,
			MinDocuments:  2,
			MaxDocuments:  4,
			Seed:          42,
		},
		API: types.APIConfig{
			Host: "localhost",
			Port: 8086,
		},
		Log: types.LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromFile loads configuration from a JSON file.
// Fields missing from the file keep their DefaultConfig values.
func LoadFromFile(configPath string) (*types.Config, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Normalize fills zero values and makes filesystem paths absolute
func Normalize(cfg *types.Config) error {
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = "./specular.db"
	}
	// DuckDB treats ":memory:" as an in-process database, keep it as is
	if cfg.Store.DBPath != ":memory:" && !filepath.IsAbs(cfg.Store.DBPath) {
		absPath, err := filepath.Abs(cfg.Store.DBPath)
		if err != nil {
			return fmt.Errorf("failed to resolve DB path: %w", err)
		}
		cfg.Store.DBPath = absPath
	}

	if cfg.Mirror.OutputRootPath != "" && !filepath.IsAbs(cfg.Mirror.OutputRootPath) {
		absPath, err := filepath.Abs(cfg.Mirror.OutputRootPath)
		if err != nil {
			return fmt.Errorf("failed to resolve output path: %w", err)
		}
		cfg.Mirror.OutputRootPath = absPath
	}

	if cfg.Store.PageSize == 0 {
		cfg.Store.PageSize = 1000
	}
	if cfg.Mirror.Concurrency == 0 {
		cfg.Mirror.Concurrency = 8
	}
	if cfg.API.Host == "" {
		cfg.API.Host = "localhost"
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = 8086
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}

// Validate checks that the configuration parameters are valid
func Validate(cfg *types.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateMirror(&cfg.Mirror); err != nil {
		return err
	}

	if cfg.Store.PageSize < 1 {
		return fmt.Errorf("page_size must be at least 1, got %d", cfg.Store.PageSize)
	}

	if cfg.Seed.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", cfg.Seed.MaxDepth)
	}
	if cfg.Seed.MinContainers < 0 {
		return fmt.Errorf("min_containers must be non-negative, got %d", cfg.Seed.MinContainers)
	}
	if cfg.Seed.MaxContainers < cfg.Seed.MinContainers {
		return fmt.Errorf("max_containers (%d) must be >= min_containers (%d)", cfg.Seed.MaxContainers, cfg.Seed.MinContainers)
	}
	if cfg.Seed.MinDocuments < 0 {
		return fmt.Errorf("min_documents must be non-negative, got %d", cfg.Seed.MinDocuments)
	}
	if cfg.Seed.MaxDocuments < cfg.Seed.MinDocuments {
		return fmt.Errorf("max_documents (%d) must be >= min_documents (%d)", cfg.Seed.MaxDocuments, cfg.Seed.MinDocuments)
	}

	if cfg.API.Port < 1 || cfg.API.Port > 65535 {
		return fmt.Errorf("API port must be between 1 and 65535, got %d", cfg.API.Port)
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", cfg.Log.Format)
	}

	return nil
}

// ValidateMirror checks the run configuration of a mirror pass.
// It runs before any traversal so a bad root, output path or query fails fast.
func ValidateMirror(m *types.MirrorConfig) error {
	if m == nil {
		return fmt.Errorf("mirror config cannot be nil")
	}
	if strings.TrimSpace(m.RootContainerID) == "" {
		return fmt.Errorf("root_container_id is required")
	}
	if strings.TrimSpace(m.OutputRootPath) == "" {
		return fmt.Errorf("output_root_path is required")
	}
	if !filepath.IsAbs(m.OutputRootPath) {
		return fmt.Errorf("output_root_path must be absolute, got %q", m.OutputRootPath)
	}
	if m.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", m.Concurrency)
	}
	if _, err := query.Parse(m.Query); err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a JSON file
func SaveToFile(cfg *types.Config, configPath string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
