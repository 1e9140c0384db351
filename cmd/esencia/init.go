package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vladimir-polyakov/esencia/internal/config"
)

func newInitCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the .esencia directory with a default config and example manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := c.dir()
			if err != nil {
				return err
			}
			if err := config.InitDir(dir); err != nil {
				return fmt.Errorf("initializing %s: %w", config.Dir, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", filepath.Join(dir, config.Dir))
			return nil
		},
	}
}
