package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/driver"
	"github.com/example/faultchar/cmd/faultchar/internal/ui"
	"github.com/example/faultchar/internal/modelfile"
	"github.com/example/faultchar/internal/observability"
	grpcTransport "github.com/example/faultchar/internal/transport/grpc"
)

var (
	listenAddr       string
	serveModelPath   string
	serveWorkDir     string
	serveMetricsAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve --listen <addr> -- <command>",
	Short: "Execute test inputs for remote sessions",
	Long: `Serve the faultchar.v1.Executor gRPC service, running <command> for every
test input a remote 'faultchar run --executor-addr' sends.

With --model, requests that are not full combinations of the model are
rejected and parameter and value names are exported to the command.

EXAMPLES:
  faultchar serve --listen :7070 -- ./test.sh
  faultchar serve --listen :7070 --model model.yaml --metrics-addr :9091 -- make test`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":7070", "address to listen on")
	serveCmd.Flags().StringVar(&serveModelPath, "model", "", "model file used to validate requests")
	serveCmd.Flags().StringVar(&serveWorkDir, "workdir", "", "working directory of the test command")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func runServe(cmd *cobra.Command, args []string) error {
	positional, command := splitCommand(cmd, args)
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments %v (put the command after --)", positional)
	}
	if command == "" {
		return fmt.Errorf("no command: pass the test command after --")
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	executor := driver.NewCommandExecutor(command).WithWorkDir(serveWorkDir)
	var opts []grpcTransport.ServerOption
	if serveModelPath != "" {
		m, err := modelfile.Load(serveModelPath)
		if err != nil {
			return err
		}
		executor.WithNames(m.ParameterNames, m.ValueNames)
		opts = append(opts, grpcTransport.WithModel(m.Model))
	}

	metrics := observability.NewMetrics().WithProcessCollectors()
	if err := serveMetrics(ctx, serveMetricsAddr, metrics, logger); err != nil {
		return err
	}

	opts = append(opts, grpcTransport.WithServerLogger(logger))
	server := grpcTransport.NewServer(&observedExecutor{executor: executor, metrics: metrics}, opts...)

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	ui.PrintHeader("Executor")
	ui.PrintInfo(fmt.Sprintf("Listening on %s", lis.Addr()))
	ui.PrintInfo(fmt.Sprintf("Test command: %s", command))
	ui.PrintInfo("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			ui.PrintWarning("Shutting down...")
		case <-ctx.Done():
		}
		server.GracefulStop()
	}()

	if err := server.ServeListener(lis); err != nil {
		return fmt.Errorf("executor server failed: %w", err)
	}
	ui.PrintSuccess("Executor stopped")
	return nil
}

// observedExecutor records an execution metric for every test input.
type observedExecutor struct {
	executor driver.Executor
	metrics  *observability.Metrics
}

func (e *observedExecutor) Execute(ctx context.Context, c domain.Combination) (domain.TestResult, error) {
	start := time.Now()
	result, err := e.executor.Execute(ctx, c)
	outcome := observability.OutcomeError
	if err == nil {
		outcome = observability.OutcomePass
		if result.IsFailed() {
			outcome = observability.OutcomeFail
		}
	}
	e.metrics.ExecutionObserved(outcome, time.Since(start))
	return result, err
}
