package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/domkit/internal/config"
	"github.com/vango-dev/domkit/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default domkit.json",
		Long: `Write domkit.json with every setting at its default value, so it can
be edited instead of written from scratch.

Examples:
  domkit init
  domkit init ./site --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errors.New("E101").Wrap(err)
			}

			path := filepath.Join(dir, config.ConfigFileName)
			if config.Exists(dir) && !force {
				return errors.New("E103").
					WithDetail(path).
					WithSuggestion("Use --force to overwrite it")
			}

			if err := config.Default().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing domkit.json")

	return cmd
}
