package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vladimir-polyakov/esencia/internal/component"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/server"
	"github.com/vladimir-polyakov/esencia/internal/tracing"
	"github.com/vladimir-polyakov/esencia/internal/treecache"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolved trees over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.open()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, s)
		},
	}
	flags := cmd.Flags()
	flags.String("host", "", "bind host (default from config)")
	flags.Int("port", 0, "bind port (default from config)")
	flags.Bool("watch", false, "reload manifests when they change")
	_ = c.v.BindPFlag("server.host", flags.Lookup("host"))
	_ = c.v.BindPFlag("server.port", flags.Lookup("port"))
	_ = c.v.BindPFlag("manifests.watch", flags.Lookup("watch"))
	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, s *session) error {
	project := s.cfg.Project

	provider, err := tracing.NewProvider(tracingConfig(s.cfg))
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	opts := []server.Option{
		server.WithLogger(s.logger),
		server.WithMetrics(s.metrics),
		server.WithTracer(provider.Tracer()),
	}
	if project.Cache.Enabled {
		cache := treecache.New(project.Cache.TTL, project.Cache.CleanupInterval,
			treecache.WithLogger(s.logger),
			treecache.WithMetrics(s.metrics),
		)
		opts = append(opts, server.WithCache(cache))
	}

	srv := server.NewServer(server.SettingsFromConfig(s.cfg), s.catalog, opts...)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d components on %s\n", s.catalog.Registry().Len(), srv.BaseURL())

	if project.Manifests.Watch {
		go func() {
			err := s.catalog.Watch(ctx, project.Manifests.Debounce, func(reg *component.Registry, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reloaded %d components\n", reg.Len())
			})
			if err != nil {
				s.logger.ErrorErr(logging.CatWatch, "watch stopped", err)
			}
		}()
	}

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
