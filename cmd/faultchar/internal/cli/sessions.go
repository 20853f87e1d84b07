package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/cmd/faultchar/internal/ui"
	"github.com/example/faultchar/internal/storage"
)

var (
	listStatus    []string
	listAlgorithm string
	listLimit     int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions",
	Long: `List the sessions stored in the database, newest first.

EXAMPLES:
  # All sessions
  faultchar sessions

  # The last five completed idd sessions
  faultchar sessions --status COMPLETE --algorithm idd --limit 5`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().StringSliceVar(&listStatus, "status", nil, "only sessions with these statuses")
	sessionsCmd.Flags().StringVar(&listAlgorithm, "algorithm", "", "only sessions run with this algorithm")
	sessionsCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "limit number of sessions shown (0 = all)")
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	opts := storage.ListOptions{Algorithm: listAlgorithm, Limit: listLimit}
	for _, s := range listStatus {
		status, err := domain.ParseSessionStatus(strings.ToUpper(s))
		if err != nil {
			return err
		}
		opts.Statuses = append(opts.Statuses, status)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var sessions []*domain.Session
	err = storage.WithTx(ctx, store, func(uow storage.UnitOfWork) error {
		sessions, err = uow.Sessions().List(ctx, opts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	ui.PrintHeader("Sessions")
	if len(sessions) == 0 {
		ui.PrintInfo("No sessions found")
		return nil
	}

	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		rows[i] = []string{
			s.ID,
			s.Algorithm,
			s.Status.String(),
			strconv.Itoa(s.Rounds),
			strconv.Itoa(s.Executions),
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		}
	}
	ui.PrintTable([]string{"ID", "ALGORITHM", "STATUS", "ROUNDS", "EXECUTIONS", "CREATED"}, rows)
	return nil
}
