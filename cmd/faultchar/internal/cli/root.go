package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/faultchar/internal/observability"
	"github.com/example/faultchar/internal/storage/sqlite"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "faultchar",
	Short: "Isolate failure-inducing parameter combinations",
	Long: `faultchar finds which combinations of parameter values make a test fail.

Given a combinatorial test model and a test that either passes or fails for a
full assignment of parameter values, faultchar runs an initial covering suite,
then asks a characterization algorithm for further test inputs until it can
name the minimal sub-combinations responsible for the failures.

ALGORITHMS:
  idd   interaction detection and isolation (exact, adaptive)
  aifl  suspicious-set elimination after a single round of probes
  ben   ranked suspicion with repeated confirmation probes

WORKFLOW:
  1. faultchar validate model.yaml
  2. faultchar run model.yaml -- ./test.sh
  3. faultchar sessions
  4. faultchar show <session-id>

EXAMPLES:
  # Characterize failures of a local script
  faultchar run model.yaml -- ./test.sh

  # Use the AIFL algorithm with 8 parallel executions
  faultchar run model.yaml --algorithm aifl --parallelism 8 -- make test

  # Execute test inputs on a remote executor
  faultchar serve --listen :7070 -- ./test.sh
  faultchar run model.yaml --executor-addr host:7070`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "faultchar.db", "path to the session database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log algorithm progress")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(versionCmd)
}

// commandContext returns the command's context, or Background when it was
// executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newLogger logs warnings to stderr, or everything with --verbose.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// openStore opens and migrates the session database.
func openStore(ctx context.Context) (*sqlite.SQLiteStorage, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// serveMetrics exposes metrics on addr until ctx is done. An empty addr
// disables the endpoint.
func serveMetrics(ctx context.Context, addr string, metrics *observability.Metrics, logger *zap.Logger) error {
	if addr == "" {
		return nil
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", lis.Addr().String()))
	return nil
}
