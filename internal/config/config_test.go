package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Project-Sylos/Specular/internal/types"
)

// TestLoadFromFile tests the LoadFromFile function
func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		missing     bool
		expectError bool
		validate    func(*testing.T, *types.Config)
	}{
		{
			name: "valid full config",
			content: `{
				"mirror": {
					"root_container_id": "root",
					"output_root_path": "/tmp/specular-out",
					"query": "typeTag = 'document'",
					"recursive": false,
					"concurrency": 4
				},
				"store": {"db_path": ":memory:", "page_size": 50},
				"seed": {
					"max_depth": 2,
					"min_containers": 1,
					"max_containers": 2,
					"min_documents": 1,
					"max_documents": 3,
					"seed": 7
				},
				"api": {"host": "0.0.0.0", "port": 9000},
				"log": {"level": "debug", "format": "json"}
			}`,
			validate: func(t *testing.T, cfg *types.Config) {
				if cfg.Mirror.Recursive {
					t.Errorf("Expected recursive=false, got true")
				}
				if cfg.Mirror.Concurrency != 4 {
					t.Errorf("Expected concurrency 4, got %d", cfg.Mirror.Concurrency)
				}
				if cfg.Store.DBPath != ":memory:" {
					t.Errorf("Expected in-memory DB path to be kept, got %s", cfg.Store.DBPath)
				}
				if cfg.Store.PageSize != 50 {
					t.Errorf("Expected page size 50, got %d", cfg.Store.PageSize)
				}
				if cfg.API.Port != 9000 {
					t.Errorf("Expected port 9000, got %d", cfg.API.Port)
				}
			},
		},
		{
			name: "minimal config keeps defaults",
			content: `{
				"mirror": {"output_root_path": "relative-out"}
			}`,
			validate: func(t *testing.T, cfg *types.Config) {
				if cfg.Mirror.RootContainerID != types.RootID {
					t.Errorf("Expected default root id, got %s", cfg.Mirror.RootContainerID)
				}
				if !cfg.Mirror.Recursive {
					t.Errorf("Expected recursive to default to true")
				}
				if !filepath.IsAbs(cfg.Mirror.OutputRootPath) {
					t.Errorf("Expected absolute output path, got %s", cfg.Mirror.OutputRootPath)
				}
				if !filepath.IsAbs(cfg.Store.DBPath) {
					t.Errorf("Expected absolute DB path, got %s", cfg.Store.DBPath)
				}
				if cfg.API.Host != "localhost" || cfg.API.Port != 8086 {
					t.Errorf("Expected default API config, got %s:%d", cfg.API.Host, cfg.API.Port)
				}
			},
		},
		{
			name:        "nonexistent config file",
			missing:     true,
			expectError: true,
		},
		{
			name:        "invalid JSON config",
			content:     `{"invalid": json}`,
			expectError: true,
		},
		{
			name:        "empty root container id",
			content:     `{"mirror": {"root_container_id": "  "}}`,
			expectError: true,
		},
		{
			name:        "malformed query",
			content:     `{"mirror": {"query": "name = unquoted"}}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if !tt.missing {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			cfg, err := LoadFromFile(path)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

// TestValidate tests configuration validation
func TestValidate(t *testing.T) {
	valid := func() types.Config {
		cfg := DefaultConfig()
		cfg.Mirror.OutputRootPath = "/tmp/out"
		return cfg
	}

	tests := []struct {
		name        string
		mutate      func(*types.Config)
		expectError string
	}{
		{name: "valid", mutate: func(*types.Config) {}},
		{name: "relative output", mutate: func(c *types.Config) { c.Mirror.OutputRootPath = "out" }, expectError: "must be absolute"},
		{name: "missing output", mutate: func(c *types.Config) { c.Mirror.OutputRootPath = "" }, expectError: "output_root_path is required"},
		{name: "zero concurrency", mutate: func(c *types.Config) { c.Mirror.Concurrency = 0 }, expectError: "concurrency"},
		{name: "zero page size", mutate: func(c *types.Config) { c.Store.PageSize = 0 }, expectError: "page_size"},
		{name: "bad depth", mutate: func(c *types.Config) { c.Seed.MaxDepth = 0 }, expectError: "max_depth"},
		{name: "container range", mutate: func(c *types.Config) { c.Seed.MaxContainers = 0 }, expectError: "max_containers"},
		{name: "document range", mutate: func(c *types.Config) { c.Seed.MinDocuments = -1 }, expectError: "min_documents"},
		{name: "port", mutate: func(c *types.Config) { c.API.Port = 70000 }, expectError: "port"},
		{name: "log level", mutate: func(c *types.Config) { c.Log.Level = "verbose" }, expectError: "log level"},
		{name: "log format", mutate: func(c *types.Config) { c.Log.Format = "xml" }, expectError: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if tt.expectError == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q but got none", tt.expectError)
			}
			if !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("Expected error containing %q, got %v", tt.expectError, err)
			}
		})
	}

	if err := Validate(nil); err == nil {
		t.Errorf("Expected error for nil config")
	}
}

// TestSaveAndLoadRoundTrip tests SaveToFile followed by LoadFromFile
func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Mirror.OutputRootPath = filepath.Join(dir, "out")
	cfg.Store.DBPath = filepath.Join(dir, "specular.db")
	cfg.Mirror.Query = "fileExtension = 'json'"

	path := filepath.Join(dir, "config.json")
	if err := SaveToFile(&cfg, path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if loaded.Mirror != cfg.Mirror {
		t.Errorf("Expected mirror config %+v, got %+v", cfg.Mirror, loaded.Mirror)
	}
	if loaded.Store != cfg.Store {
		t.Errorf("Expected store config %+v, got %+v", cfg.Store, loaded.Store)
	}
}
