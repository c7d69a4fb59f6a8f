package main

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/Project-Sylos/Specular/sdk"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the local store as a directory tree",
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

		return fs.WalkDir(s.AsFS(cmd.Context()), ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// restricted containers are listed but not entered
				fmt.Printf("%s [%v]\n", path, err)
				return nil
			}
			if path == "." {
				fmt.Println(".")
				return nil
			}
			depth := strings.Count(path, "/")
			suffix := ""
			if d.IsDir() {
				suffix = "/"
			}
			fmt.Printf("%s%s%s\n", strings.Repeat("  ", depth+1), d.Name(), suffix)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
