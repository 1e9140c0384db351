package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vladimir-polyakov/esencia/internal/render"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered components in registration order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open()
			if err != nil {
				return err
			}
			defer s.Close()

			defs := s.catalog.Registry().Definitions()
			if len(defs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No components registered.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Table(defs, c.styles()))
			return nil
		},
	}
}
