package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/internal/storage"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestSession(t *testing.T, id string) *domain.Session {
	t.Helper()
	forbidden, err := domain.NewTupleList(1, []int{0, 1}, [][]int{{1, 1}}, false)
	require.NoError(t, err)
	model, err := domain.NewTestModel(2, []int{2, 3, 2}, []*domain.TupleList{forbidden}, nil)
	require.NoError(t, err)
	return domain.NewSession(id, model, domain.SessionConfig{Algorithm: "ben", SuiteSeed: 7})
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	session := newTestSession(t, "session-1")

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Create(ctx, session)
	}))

	var got *domain.Session
	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		var err error
		got, err = uow.Sessions().Get(ctx, "session-1")
		return err
	}))

	assert.Equal(t, "ben", got.Algorithm)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, session.Model.Equal(got.Model), "model mismatch: %s vs %s", session.Model, got.Model)
	assert.Equal(t, session.Config, got.Config)
	assert.Equal(t, int64(1), got.Version)
	assert.Nil(t, got.CompletedAt)
	assert.Empty(t, got.FailureInducing)
}

func TestSessionUpdateStoresFindings(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	session := newTestSession(t, "session-2")

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Create(ctx, session)
	}))

	require.NoError(t, session.SetStatus(domain.StatusRunning))
	session.RecordInitialSuite(6)
	session.RecordRound(2)
	found := []domain.Combination{
		domain.NewCombination(1, domain.NoValue, 0),
		domain.NewCombination(domain.NoValue, 2, domain.NoValue),
	}
	require.NoError(t, session.SetResult(found))

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Update(ctx, session)
	}))
	assert.Equal(t, int64(2), session.Version)

	var got *domain.Session
	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		var err error
		got, err = uow.Sessions().Get(ctx, "session-2")
		return err
	}))
	assert.Equal(t, domain.StatusComplete, got.Status)
	assert.Equal(t, 1, got.Rounds)
	assert.Equal(t, 8, got.Executions)
	assert.Equal(t, found, got.FailureInducing)
	require.NotNil(t, got.CompletedAt)
}

func TestSessionUpdateDetectsConcurrentModification(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	session := newTestSession(t, "session-3")
	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Create(ctx, session)
	}))

	stale := *session
	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Update(ctx, session)
	}))

	err := storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Update(ctx, &stale)
	})
	assert.True(t, errors.Is(err, domain.ErrConcurrentModify), "got %v", err)
}

func TestSessionNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	err := storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		_, err := uow.Sessions().Get(ctx, "missing")
		return err
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)

	err = storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Delete(ctx, "missing")
	})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "got %v", err)
}

func TestSessionList(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		session := newTestSession(t, id)
		session.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if id == "b" {
			session.Algorithm = "idd"
			session.SetFailed("executor unreachable")
		}
		require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
			return uow.Sessions().Create(ctx, session)
		}))
	}

	list := func(opts storage.ListOptions) []string {
		t.Helper()
		var ids []string
		require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
			sessions, err := uow.Sessions().List(ctx, opts)
			for _, session := range sessions {
				ids = append(ids, session.ID)
			}
			return err
		}))
		return ids
	}

	assert.Equal(t, []string{"c", "b", "a"}, list(storage.ListOptions{}))
	assert.Equal(t, []string{"b"}, list(storage.ListOptions{Statuses: []domain.SessionStatus{domain.StatusFailed}}))
	assert.Equal(t, []string{"c", "a"}, list(storage.ListOptions{Algorithm: "ben"}))
	assert.Equal(t, []string{"b"}, list(storage.ListOptions{Limit: 1, Offset: 1}))
}

func TestExecutionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	session := newTestSession(t, "session-4")

	executedAt := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	executions := []domain.Execution{
		{
			Round:       0,
			Combination: domain.NewCombination(0, 1, 1),
			Result:      domain.Passed(),
			Duration:    150 * time.Millisecond,
			ExecutedAt:  executedAt,
		},
		{
			Round:       1,
			Combination: domain.NewCombination(1, 2, 0),
			Result:      domain.Failed(errors.New("exit status 1")),
			Duration:    time.Second,
			ExecutedAt:  executedAt.Add(time.Second),
		},
	}

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		if err := uow.Sessions().Create(ctx, session); err != nil {
			return err
		}
		return uow.Executions().Record(ctx, session.ID, executions)
	}))

	var got []domain.Execution
	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		var err error
		got, err = uow.Executions().List(ctx, session.ID)
		return err
	}))

	require.Len(t, got, 2)
	assert.Equal(t, executions[0].Combination, got[0].Combination)
	assert.True(t, got[0].Result.IsSuccessful())
	assert.Nil(t, got[0].Result.Cause)
	assert.Equal(t, 150*time.Millisecond, got[0].Duration)
	assert.True(t, executedAt.Equal(got[0].ExecutedAt))
	assert.Equal(t, 1, got[1].Round)
	assert.True(t, got[1].Result.IsFailed())
	require.NotNil(t, got[1].Result.Cause)
	assert.Equal(t, "exit status 1", got[1].Result.Cause.Error())
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	session := newTestSession(t, "session-5")
	session.FailureInducing = []domain.Combination{domain.NewCombination(1, domain.NoValue, domain.NoValue)}

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		if err := uow.Sessions().Create(ctx, session); err != nil {
			return err
		}
		return uow.Executions().Record(ctx, session.ID, []domain.Execution{{
			Combination: domain.NewCombination(1, 0, 0),
			Result:      domain.Failed(nil),
			ExecutedAt:  time.Now().UTC(),
		}})
	}))

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		return uow.Sessions().Delete(ctx, session.ID)
	}))

	require.NoError(t, storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		executions, err := uow.Executions().List(ctx, session.ID)
		if err != nil {
			return err
		}
		findings, err := uow.Findings().List(ctx, session.ID)
		if err != nil {
			return err
		}
		assert.Empty(t, executions)
		assert.Empty(t, findings)
		return nil
	}))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	boom := errors.New("boom")

	err := storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		if err := uow.Sessions().Create(ctx, newTestSession(t, "rolled-back")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = storage.WithTx(ctx, s, func(uow storage.UnitOfWork) error {
		_, err := uow.Sessions().Get(ctx, "rolled-back")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
