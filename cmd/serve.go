package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openlawindex/harvester/internal/api"
)

// newServeCmd creates the 'serve' subcommand. It runs the read-only
// status API until the context is canceled.
func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves the status API and Prometheus metrics",
		Long: `Starts the HTTP server exposing health probes, Prometheus metrics,
run summaries, and windowed record access over the corpus store. The
server runs until interrupted.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if port == 0 {
				port = a.Config().Server.Port
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           api.NewServer(a.Store(), a.Logger()).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.Logger().Info("status server listening", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown: %w", err)
				}
				return nil
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to server.port from config)")
	return cmd
}
