package main

import (
	"github.com/spf13/cobra"

	"github.com/vladimir-polyakov/esencia/internal/tui"
)

func newBrowseCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "browse NAME...",
		Short: "Explore the resolved tree interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open()
			if err != nil {
				return err
			}
			defer s.Close()

			app := tui.NewApp(s.catalog.Registry(), args,
				tui.WithReload(s.catalog.Reload),
				tui.WithLogger(s.logger),
				tui.WithStyles(c.styles()),
			)
			return tui.Run(app)
		},
	}
}
