package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

var errInvalidManifests = errors.New("manifests are invalid")

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load manifests and check that every component resolves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			s, err := c.open()
			if err != nil {
				fmt.Fprintf(out, "Validation failed: %v\n", err)
				return errInvalidManifests
			}
			defer s.Close()

			reg := s.catalog.Registry()
			paths := strings.Join(s.cfg.ManifestPaths(), ", ")
			if err := component.Check(reg); err != nil {
				fmt.Fprintf(out, "Invalid: %s\n", paths)
				for _, problem := range splitJoined(err) {
					fmt.Fprintf(out, "- %v\n", problem)
				}
				return errInvalidManifests
			}
			fmt.Fprintf(out, "OK: %d components (%s)\n", reg.Len(), paths)
			return nil
		},
	}
}

func splitJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
