package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/stockroom/internal/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Connect to storage (retrying while it is unreachable), expire orders dated
before today, then serve the HTTP API until SIGINT or SIGTERM.

Example:
  stockroom serve --db ./stockroom.db --addr 127.0.0.1:5000
  STOCKROOM_DB_DRIVER=postgres STOCKROOM_DB_DSN=postgres://... stockroom serve`,
		Args: cobra.NoArgs,
		RunE: withSession(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			addr := s.cfg.HTTPAddr
			if opts.Addr != "" {
				addr = opts.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := s.timeline.Startup(ctx); err != nil {
				return WrapExitError(ExitFailure, "startup sweep failed", err)
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to listen", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Warehouse app at http://%s\n", ln.Addr())
			return serve(ctx, s, ln)
		}),
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $STOCKROOM_HTTP_ADDR or 127.0.0.1:5000)")

	return cmd
}

// serve runs the API on ln until ctx is cancelled, then shuts down within
// the configured timeout.
func serve(ctx context.Context, s *session, ln net.Listener) error {
	srv := &http.Server{
		Handler:           httpapi.New(s.engine, s.timeline, s.logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
