package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/cmd/faultchar/internal/ui"
	"github.com/example/faultchar/internal/modelfile"
	"github.com/example/faultchar/internal/storage"
)

var (
	showExecutions bool
	showModelPath  string
)

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a stored session",
	Long: `Display a stored session and its failure-inducing combinations.

Combinations are printed as value indices unless --model names the model file
the session was run with.

EXAMPLES:
  faultchar show 0b6f0f0e-8d0e-4b8e-9a55-3f1c2f7a9d11
  faultchar show <session-id> --model model.yaml --executions`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showExecutions, "executions", false, "list every executed test input")
	showCmd.Flags().StringVar(&showModelPath, "model", "", "model file used to name parameters and values")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var m *modelfile.Model
	if showModelPath != "" {
		var err error
		if m, err = modelfile.Load(showModelPath); err != nil {
			return err
		}
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var (
		sess       *domain.Session
		executions []domain.Execution
	)
	err = storage.WithTx(ctx, store, func(uow storage.UnitOfWork) error {
		var err error
		if sess, err = uow.Sessions().Get(ctx, args[0]); err != nil {
			return err
		}
		if showExecutions {
			executions, err = uow.Executions().List(ctx, sess.ID)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", args[0], err)
	}
	if m != nil && !m.Model.Equal(sess.Model) {
		ui.PrintWarning("The model file differs from the session's model; showing value indices")
		m = nil
	}

	ui.PrintHeader("Session " + sess.ID)
	ui.PrintInfo(fmt.Sprintf("Created: %s", sess.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	if sess.CompletedAt != nil {
		ui.PrintInfo(fmt.Sprintf("Finished: %s (%s)",
			sess.CompletedAt.Local().Format("2006-01-02 15:04:05"),
			ui.FormatDuration(sess.CompletedAt.Sub(sess.CreatedAt))))
	}
	ui.PrintInfo(fmt.Sprintf("Model: %s", sess.Model))
	ui.PrintInfo(fmt.Sprintf("Parallelism: %d, attempts: %d, constraint policy: %s",
		sess.Config.Parallelism, sess.Config.MaxAttempts, sess.Config.ConstraintPolicy))
	printSession(sess, m)

	if !showExecutions {
		return nil
	}
	ui.PrintHeader(fmt.Sprintf("Executions (%d)", len(executions)))
	rows := make([][]string, len(executions))
	for i, e := range executions {
		input := e.Combination.String()
		if m != nil {
			input = m.Format(e.Combination)
		}
		rows[i] = []string{
			strconv.Itoa(e.Round),
			input,
			e.Result.String(),
			ui.FormatDuration(e.Duration),
		}
	}
	ui.PrintTable([]string{"ROUND", "INPUT", "RESULT", "DURATION"}, rows)
	return nil
}
