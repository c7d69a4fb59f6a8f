package main

import (
	"github.com/Project-Sylos/Specular/internal/api"
	"github.com/Project-Sylos/Specular/internal/logging"
	"github.com/Project-Sylos/Specular/sdk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveOpts struct {
	host string
	port int
	seed bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local document store over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("host") {
			cfg.API.Host = serveOpts.host
		}
		if cmd.Flags().Changed("port") {
			cfg.API.Port = serveOpts.port
		}

		s, err := sdk.NewWithConfig(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Close(); err != nil {
				logging.L().Warn("Error closing store", zap.Error(err))
			}
		}()

		if serveOpts.seed {
			n, err := s.Seed(cmd.Context())
			if err != nil {
				return err
			}
			logging.L().Info("Seeded store", zap.Int("created", n))
		}

		// I am here to serve.
		return api.NewServer(s.Store(), &cfg.API).Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.host, "host", "localhost", "Listen host")
	serveCmd.Flags().IntVarP(&serveOpts.port, "port", "p", 8086, "Listen port")
	serveCmd.Flags().BoolVar(&serveOpts.seed, "seed", false, "Seed the store with the demo tree before serving")
	rootCmd.AddCommand(serveCmd)
}
