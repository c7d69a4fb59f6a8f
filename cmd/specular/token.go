package main

import (
	"fmt"
	"time"

	"github.com/Project-Sylos/Specular/internal/auth"
	"github.com/spf13/cobra"
)

var tokenOpts struct {
	subject string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an API server configured with jwt_secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.API.JWTSecret == "" {
			return fmt.Errorf("api.jwt_secret is not set in the configuration")
		}

		token, err := auth.New(cfg.API.JWTSecret).Issue(tokenOpts.subject, tokenOpts.ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOpts.subject, "subject", "specular", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenOpts.ttl, "ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
