package main

import (
	"fmt"

	"github.com/Project-Sylos/Specular/sdk"
	"github.com/spf13/cobra"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the local store with a deterministic demo tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := sdk.NewWithConfig(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if seedReset {
			if err := s.Reset(); err != nil {
				return err
			}
		}
		n, err := s.Seed(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Created %d nodes in %s (seed %d)\n", n, cfg.Store.DBPath, cfg.Seed.Seed)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Clear the store before seeding")
	rootCmd.AddCommand(seedCmd)
}
