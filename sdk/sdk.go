package sdk

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/Project-Sylos/Specular/internal/config"
	"github.com/Project-Sylos/Specular/internal/logging"
	"github.com/Project-Sylos/Specular/internal/mirror"
	"github.com/Project-Sylos/Specular/internal/remote"
	"github.com/Project-Sylos/Specular/internal/store"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Re-exported types for callers outside the module
type (
	Config       = types.Config
	MirrorConfig = types.MirrorConfig
	Node         = types.Node
	Report       = mirror.Report
)

// Specular is the public SDK interface for mirroring a remote tree to disk.
// It owns the local document store; mirrors read either from that store or
// from a Specular API server when MirrorConfig.RemoteURL is set.
type Specular struct {
	store *store.Store
	cfg   *types.Config
}

// New creates a new Specular instance using the specified config file
func New(configPath string) (*Specular, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a new Specular instance from an in-memory configuration
func NewWithConfig(cfg *types.Config) (*Specular, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Normalize(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	s, err := store.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Specular: %w", err)
	}
	return &Specular{store: s, cfg: cfg}, nil
}

// Mirror runs one mirror pass into the configured output directory on the host filesystem
func (s *Specular) Mirror(ctx context.Context) (*Report, error) {
	return s.MirrorTo(ctx, osfs.New("/"))
}

// MirrorTo runs one mirror pass into fsys. OutputRootPath is interpreted inside fsys.
func (s *Specular) MirrorTo(ctx context.Context, fsys billy.Filesystem) (*Report, error) {
	engine := mirror.NewEngine(s.cfg.Mirror, s.remote(), fsys, logging.L())
	return engine.Run(ctx)
}

// remote picks the HTTP client when a remote URL is configured
func (s *Specular) remote() mirror.Remote {
	if s.cfg.Mirror.RemoteURL == "" {
		return s.store
	}
	return remote.New(remote.Config{
		BaseURL:   s.cfg.Mirror.RemoteURL,
		AuthToken: s.cfg.Mirror.AuthToken,
	})
}

// Seed populates the local store with the configured demo tree
func (s *Specular) Seed(ctx context.Context) (int, error) {
	return s.store.Seed(ctx)
}

// Reset clears all nodes and recreates the root
func (s *Specular) Reset() error {
	return s.store.Reset()
}

// AsFS exposes the local store as a read-only fs.FS rooted at the root container
func (s *Specular) AsFS(ctx context.Context) fs.FS {
	return s.store.AsFS(ctx)
}

// Store returns the underlying document store
func (s *Specular) Store() *store.Store {
	return s.store
}

// GetConfig returns the current configuration
func (s *Specular) GetConfig() *types.Config {
	return s.cfg
}

// Close closes the database connection
func (s *Specular) Close() error {
	return s.store.Close()
}
