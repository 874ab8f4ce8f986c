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

	"github.com/getmockd/modelproxy/pkg/interceptor"
)

// shutdownTimeout is the maximum time to wait for graceful shutdown.
const shutdownTimeout = 10 * time.Second

// DefaultAddr is the listen address of the serve command.
const DefaultAddr = "127.0.0.1:4010"

func newServeCommand(g *globals) *cobra.Command {
	var (
		addr         string
		maxBodyBytes int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve configured interfaces over HTTP",
		Long: `Start the interceptor: an HTTP server exposing every configured interface
to browser code, which calls the proxy instead of the backends.

  GET|POST /{id}       dispatch one interface with query or form params
  POST     /_pipeline  run a pipeline document from the request body
  GET      /_ids       list interface ids, filtered by ?prefix=
  GET      /_metrics   call metrics in the Prometheus text format

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  modelproxy serve
  modelproxy serve --addr :8080 --status mock`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, log, err := g.runtime(cmd)
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}

			srv := &http.Server{
				Handler:           interceptor.New(rt, interceptor.WithLogger(log), interceptor.WithMaxBodyBytes(maxBodyBytes)),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Serve(ln)
			}()
			log.Info("interceptor listening", "addr", ln.Addr().String(), "interfaces", rt.Registry.Len(), "status", rt.Registry.Status())

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", DefaultAddr, "Listen address")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body", interceptor.DefaultMaxBodyBytes, "Maximum pipeline request body in bytes")
	return cmd
}
