package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
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
	algorithmName    string
	parallelism      int
	maxRounds        int
	maxAttempts      int
	executionTimeout time.Duration
	runSeed          int64
	constraintPolicy string
	benProbes        int
	executorAddr     string
	workDir          string
	metricsAddr      string
)

var runCmd = &cobra.Command{
	Use:   "run <model.yaml> [-- <command>]",
	Short: "Characterize the failures of a test",
	Long: `Run a characterization session for the model in <model.yaml>.

Each test input is executed either by running <command> through /bin/sh or by
a remote executor started with 'faultchar serve'. The command sees the test
input in its environment:

  FAULTCHAR_COMBINATION  value indices, e.g. "1,0,2"
  FAULTCHAR_P<i>         value index of parameter i
  FAULTCHAR_<NAME>       value name of parameter NAME

Exit status 0 is a pass, anything else a failure.

The session and every execution are stored in the database given by --db.
Press Ctrl+C to stop; the session is then recorded as FAILED.

EXAMPLES:
  # Run locally with the default algorithm (idd)
  faultchar run model.yaml -- ./test.sh

  # Retry flaky infrastructure and bound every execution
  faultchar run model.yaml --attempts 3 --timeout 2m -- make test

  # Do not execute inputs that violate forbidden constraints
  faultchar run model.yaml --constraint-policy fail -- ./test.sh

  # Use a remote executor and expose metrics
  faultchar run model.yaml --executor-addr host:7070 --metrics-addr :9090`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	defaults := domain.DefaultSessionConfig()
	runCmd.Flags().StringVarP(&algorithmName, "algorithm", "a", defaults.Algorithm, "characterization algorithm (idd, aifl, ben)")
	runCmd.Flags().IntVarP(&parallelism, "parallelism", "p", defaults.Parallelism, "number of test inputs executed concurrently")
	runCmd.Flags().IntVar(&maxRounds, "max-rounds", defaults.MaxRounds, "maximum number of refinement rounds")
	runCmd.Flags().IntVar(&maxAttempts, "attempts", defaults.MaxAttempts, "attempts per test input on execution errors")
	runCmd.Flags().DurationVar(&executionTimeout, "timeout", 0, "timeout per execution (0 = none)")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "initial suite generation seed (0 = random)")
	runCmd.Flags().StringVar(&constraintPolicy, "constraint-policy", string(defaults.ConstraintPolicy), "handling of requested inputs that violate forbidden constraints (ignore, fail)")
	runCmd.Flags().IntVar(&benProbes, "ben-probes", defaults.BENProbesPerRound, "confirmation probes per round for ben")
	runCmd.Flags().StringVar(&executorAddr, "executor-addr", "", "address of a remote executor")
	runCmd.Flags().StringVar(&workDir, "workdir", "", "working directory of the test command")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

func runRun(cmd *cobra.Command, args []string) error {
	modelPath, command := splitCommand(cmd, args)
	if len(modelPath) != 1 {
		return fmt.Errorf("expected exactly one model file, got %d", len(modelPath))
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	// Handle Ctrl+C gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			ui.PrintWarning("Interrupted! Stopping outstanding executions...")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	m, err := modelfile.Load(modelPath[0])
	if err != nil {
		return err
	}

	ui.PrintHeader("Fault Characterization")
	ui.PrintInfo(fmt.Sprintf("Model: %s", modelPath[0]))
	ui.PrintInfo(fmt.Sprintf("Parameters: %s", strings.Join(m.ParameterNames, ", ")))
	ui.PrintInfo(fmt.Sprintf("Algorithm: %s", algorithmName))
	ui.PrintInfo("")

	ui.PrintStep("Configuring executor")
	executor, closeExecutor, err := newExecutor(ctx, m, command)
	if err != nil {
		return err
	}
	defer closeExecutor()
	ui.PrintSuccess("Executor ready")

	ui.PrintStep("Initializing database")
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	ui.PrintSuccess("Database ready")

	metrics := observability.NewMetrics().WithProcessCollectors()
	if err := serveMetrics(ctx, metricsAddr, metrics, logger); err != nil {
		return err
	}

	d := driver.New(
		driver.WithLogger(logger),
		driver.WithStorage(store),
		driver.WithMetrics(metrics),
	)

	req := &driver.Request{
		Model:    m.Model,
		Initial:  m.Initial,
		Executor: executor,
		Config: domain.SessionConfig{
			Algorithm:         algorithmName,
			Parallelism:       parallelism,
			MaxRounds:         maxRounds,
			MaxAttempts:       maxAttempts,
			ExecutionTimeout:  executionTimeout,
			ConstraintPolicy:  domain.ConstraintPolicy(constraintPolicy),
			SuiteSeed:         runSeed,
			BENProbesPerRound: benProbes,
		},
	}

	ui.PrintHeader("Executing Test Inputs")
	start := time.Now()
	sess, runErr := d.Run(ctx, req)
	if sess == nil {
		return runErr
	}
	printSession(sess, m)
	ui.PrintInfo(fmt.Sprintf("Elapsed: %s", ui.FormatDuration(time.Since(start))))

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			ui.PrintInfo(fmt.Sprintf("Session %s was stopped before completion.", sess.ID))
		}
		return runErr
	}
	return nil
}

// splitCommand separates positional arguments from the command after "--".
func splitCommand(cmd *cobra.Command, args []string) ([]string, string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 || dash > len(args) {
		return args, ""
	}
	return args[:dash], strings.Join(args[dash:], " ")
}

// newExecutor returns either a remote or a local command executor.
func newExecutor(ctx context.Context, m *modelfile.Model, command string) (driver.Executor, func(), error) {
	switch {
	case executorAddr != "" && command != "":
		return nil, nil, fmt.Errorf("use either --executor-addr or a command, not both")
	case executorAddr != "":
		remote, err := grpcTransport.Dial(executorAddr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to executor: %w", err)
		}
		readyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if ok, err := remote.Ready(readyCtx); err != nil || !ok {
			remote.Close()
			if err == nil {
				err = errors.New("not serving")
			}
			return nil, nil, fmt.Errorf("executor at %s is not ready: %w", executorAddr, err)
		}
		ui.PrintInfo(fmt.Sprintf("Remote executor: %s", executorAddr))
		return remote, func() { remote.Close() }, nil
	case command != "":
		ui.PrintInfo(fmt.Sprintf("Test command: %s", command))
		executor := driver.NewCommandExecutor(command).
			WithNames(m.ParameterNames, m.ValueNames).
			WithWorkDir(workDir)
		return executor, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("no executor: pass a command after -- or --executor-addr")
	}
}

// printSession prints the outcome of a session. A nil model prints raw
// value indices.
func printSession(sess *domain.Session, m *modelfile.Model) {
	ui.PrintStatus(sess.Status.String())
	ui.PrintInfo(fmt.Sprintf("Session: %s", sess.ID))
	ui.PrintInfo(fmt.Sprintf("Algorithm: %s", sess.Algorithm))
	ui.PrintInfo(fmt.Sprintf("Rounds: %d", sess.Rounds))
	ui.PrintInfo(fmt.Sprintf("Executions: %d", sess.Executions))

	if sess.Status == domain.StatusFailed {
		ui.PrintError(sess.FailureReason)
		return
	}

	ui.PrintInfo("")
	if len(sess.FailureInducing) == 0 {
		ui.PrintSuccess("No failure-inducing combinations found")
		return
	}
	ui.PrintWarning(fmt.Sprintf("%d failure-inducing combination(s):", len(sess.FailureInducing)))
	for i, c := range sess.FailureInducing {
		text := c.String()
		if m != nil {
			text = m.Format(c)
		}
		ui.PrintCombination(i+1, text, c.String())
	}
}
