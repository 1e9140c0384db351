package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vladimir-polyakov/esencia/internal/component"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/render"
	"github.com/vladimir-polyakov/esencia/internal/tracing"
)

func newResolveCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "resolve NAME...",
		Short: "Print the minimal tree containing the named components",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open()
			if err != nil {
				return err
			}
			defer s.Close()

			provider, err := tracing.NewProvider(tracingConfig(s.cfg))
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = provider.Shutdown(ctx)
			}()

			reg := s.catalog.Registry()
			_, span := tracing.StartResolveSpan(cmd.Context(), provider.Tracer(), reg.ID(), args)
			start := time.Now()
			forest, err := reg.Resolve(args...)
			s.metrics.RecordResolve(time.Since(start), err)
			tracing.EndResolveSpan(span, forest, err)
			if err != nil {
				s.logger.Warn(logging.CatResolve, "resolve failed", "kind", string(component.KindOf(err)), "error", err.Error())
				return err
			}
			s.logger.Info(logging.CatResolve, "resolved", "names", len(args), "roots", len(forest))
			return writeForest(cmd, forest, format, c.styles())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "tree", "output format: tree, compact, json, yaml")
	return cmd
}

func writeForest(cmd *cobra.Command, forest component.Forest, format string, styles render.Styles) error {
	out := cmd.OutOrStdout()
	switch format {
	case "tree":
		fmt.Fprintln(out, render.Tree(forest, styles))
	case "compact":
		fmt.Fprintln(out, render.Compact(forest))
	case "json":
		data, err := render.JSON(forest)
		if err != nil {
			return err
		}
		_, _ = out.Write(data)
	case "yaml":
		data, err := render.YAML(forest)
		if err != nil {
			return err
		}
		_, _ = out.Write(data)
	default:
		return fmt.Errorf("unknown format %q (want tree, compact, json or yaml)", format)
	}
	return nil
}
