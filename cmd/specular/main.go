package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Project-Sylos/Specular/internal/config"
	"github.com/Project-Sylos/Specular/internal/logging"
	"github.com/Project-Sylos/Specular/internal/types"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "specular",
	Short: "Specular: mirror a remote document tree onto the local filesystem",
	Long: `Specular walks a container tree held in a remote document store, exports
every supported document and writes the result under a local directory,
recreating the container hierarchy as directories.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads --config when given, otherwise the defaults, and
// initializes the global logger from the result
func loadConfig() (*types.Config, error) {
	var cfg *types.Config
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		def := config.DefaultConfig()
		if err := config.Normalize(&def); err != nil {
			return nil, err
		}
		cfg = &def
	}

	if err := logging.Init(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logLevel != "" {
		logging.SetLevel(logLevel)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	_ = logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
