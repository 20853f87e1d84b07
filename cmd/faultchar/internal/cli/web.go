package cli

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/faultchar/cmd/faultchar/internal/ui"
	"github.com/example/faultchar/internal/observability"
	"github.com/example/faultchar/internal/web"
)

var webListen string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve stored sessions over HTTP",
	Long: `Serve a read-only JSON API over the sessions in the database.

ROUTES:
  GET /api/sessions/               list sessions (status, algorithm, limit, offset)
  GET /api/sessions/{id}           session with its failure-inducing combinations
  GET /api/sessions/{id}/timeline  every executed test input
  GET /metrics                     Prometheus metrics

EXAMPLES:
  faultchar web --listen :8080 --db faultchar.db`,
	Args: cobra.NoArgs,
	RunE: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&webListen, "listen", ":8080", "address to listen on")
}

func runWeb(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics := observability.NewMetrics().WithProcessCollectors()
	server := web.NewServer(store,
		web.WithLogger(logger),
		web.WithMetricsHandler(metrics.Handler()),
	)

	lis, err := net.Listen("tcp", webListen)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	ui.PrintHeader("Session Browser")
	ui.PrintInfo(fmt.Sprintf("Database: %s", dbPath))
	ui.PrintInfo(fmt.Sprintf("Listening on http://%s", lis.Addr()))
	ui.PrintInfo("Press Ctrl+C to stop")

	if err := server.Serve(ctx, lis); err != nil {
		return fmt.Errorf("web server failed: %w", err)
	}
	ui.PrintSuccess("Web server stopped")
	return nil
}
