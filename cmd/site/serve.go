package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the public site and admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := opts.buildModule()
			if err != nil {
				return err
			}
			defer module.Close()

			cfg := module.Config()
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			listener, err := net.Listen("tcp", cfg.HTTP.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
			}
			srv := &http.Server{
				Handler:           module.Handler(),
				ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
				ReadTimeout:       cfg.HTTP.ReadTimeout,
				WriteTimeout:      cfg.HTTP.WriteTimeout,
				IdleTimeout:       cfg.HTTP.IdleTimeout,
			}
			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s\n", cfg.Site.Name, listener.Addr())
			return serve(cmd.Context(), srv, listener, module.Watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overriding http.addr")
	return cmd
}

// serve runs srv and watch until ctx is done or either fails, then shuts the
// server down.
func serve(ctx context.Context, srv *http.Server, listener net.Listener, watch func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return watch(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
