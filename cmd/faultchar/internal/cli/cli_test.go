package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/cmd/faultchar/internal/ui"
	"github.com/example/faultchar/internal/storage"
	"github.com/example/faultchar/internal/storage/sqlite"
)

const testModel = `
strength: 2
parameters:
  - name: os
    values: [linux, windows, darwin]
  - name: browser
    values: [firefox, chrome]
  - name: locale
    values: [en, de]
`

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	prev := ui.Out
	ui.Out = &out
	t.Cleanup(func() { ui.Out = prev })

	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default so tests don't leak
// settings into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeModel(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	path := writeModel(t, testModel)

	out, err := execute(t, "validate", path, "--suite", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Model is valid")
	assert.Contains(t, out, "Full combinations: 12")
	assert.Contains(t, out, "Initial Suite")
	assert.Contains(t, out, "windows")
}

func TestValidateRejectsInvalidModel(t *testing.T) {
	path := writeModel(t, "strength: 3\nparameters: [{name: a, values: [x, y]}]\n")

	_, err := execute(t, "validate", path)
	assert.ErrorIs(t, err, domain.ErrInvalidModel)

	_, err = execute(t, "validate")
	assert.Error(t, err)
}

func TestRunRequiresExactlyOneExecutor(t *testing.T) {
	path := writeModel(t, testModel)
	db := filepath.Join(t.TempDir(), "faultchar.db")

	_, err := execute(t, "--db", db, "run", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no executor")

	_, err = execute(t, "--db", db, "run", path, "--executor-addr", "localhost:1", "--", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	path := writeModel(t, testModel)
	db := filepath.Join(t.TempDir(), "faultchar.db")

	_, err := execute(t, "--db", db, "run", path, "--attempts", "11", "--", "true")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRunShowAndSessions(t *testing.T) {
	path := writeModel(t, testModel)
	db := filepath.Join(t.TempDir(), "faultchar.db")

	out, err := execute(t, "--db", db, "run", path, "--algorithm", "aifl", "--seed", "7", "--parallelism", "2",
		"--", "test", `"$FAULTCHAR_OS"`, "!=", "windows")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLETE")
	assert.Contains(t, out, "os=windows")

	store, err := sqlite.New(db)
	require.NoError(t, err)
	var sessions []*domain.Session
	require.NoError(t, storage.WithTx(context.Background(), store, func(uow storage.UnitOfWork) error {
		sessions, err = uow.Sessions().List(context.Background(), storage.ListOptions{})
		return err
	}))
	require.NoError(t, store.Close())
	require.Len(t, sessions, 1)
	id := sessions[0].ID

	out, err = execute(t, "--db", db, "sessions", "--status", "complete")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = execute(t, "--db", db, "sessions", "--algorithm", "aifl")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = execute(t, "--db", db, "sessions", "--algorithm", "idd")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found")

	out, err = execute(t, "--db", db, "show", id, "--model", path, "--executions")
	require.NoError(t, err)
	assert.Contains(t, out, "os=windows")
	assert.Contains(t, out, "ROUND")
	assert.Contains(t, out, "FAIL")
}

func TestShowUnknownSession(t *testing.T) {
	db := filepath.Join(t.TempDir(), "faultchar.db")

	_, err := execute(t, "--db", db, "show", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionsRejectsUnknownStatus(t *testing.T) {
	db := filepath.Join(t.TempDir(), "faultchar.db")

	_, err := execute(t, "--db", db, "sessions", "--status", "paused")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestServeRequiresCommand(t *testing.T) {
	_, err := execute(t, "serve", "--listen", "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Algorithms: aifl, ben, idd")
}

func TestSplitCommand(t *testing.T) {
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	require.NoError(t, cmd.ParseFlags([]string{"model.yaml", "--", "make", "test"}))

	positional, command := splitCommand(cmd, cmd.Flags().Args())
	assert.Equal(t, []string{"model.yaml"}, positional)
	assert.Equal(t, "make test", command)
}
