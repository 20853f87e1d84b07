// Package driver runs characterization sessions: it executes the initial
// suite and every test input an algorithm requests, feeds the results back
// and records the session.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/faultchar/characterization/algorithm"
	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/report"
	"github.com/example/faultchar/characterization/suite"
	"github.com/example/faultchar/internal/observability"
	"github.com/example/faultchar/internal/storage"
	"github.com/example/faultchar/pkg/id"
)

// Driver coordinates characterization sessions.
type Driver struct {
	logger      *zap.Logger
	store       storage.Storage
	metrics     *observability.Metrics
	idGenerator func() string
	builder     suite.Builder
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithStorage persists sessions, executions and findings.
func WithStorage(store storage.Storage) Option {
	return func(d *Driver) { d.store = store }
}

// WithMetrics records session and execution metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(d *Driver) { d.metrics = metrics }
}

// WithIDGenerator sets the session ID generator. The default generates UUIDs.
func WithIDGenerator(gen func() string) Option {
	return func(d *Driver) {
		if gen != nil {
			d.idGenerator = gen
		}
	}
}

// WithBuilder sets the initial suite builder. The default is a greedy
// builder configured from the session config.
func WithBuilder(builder suite.Builder) Option {
	return func(d *Driver) { d.builder = builder }
}

// New creates a Driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		logger:      zap.NewNop(),
		idGenerator: id.Generate,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// session carries the per-run state shared by the driver steps.
type session struct {
	*domain.Session
	req     *Request
	checker domain.ConstraintChecker
	logger  *zap.Logger

	// executions of the last batch, not yet stored
	executions []domain.Execution
}

// Run executes one characterization session to completion.
//
// The returned session is non-nil whenever the request was valid; on error it
// is FAILED and carries the failure reason.
func (d *Driver) Run(ctx context.Context, req *Request) (*domain.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s := &session{
		Session: domain.NewSession(d.idGenerator(), req.Model, req.Config),
		req:     req,
		checker: req.ConstraintChecker,
	}
	if s.checker == nil {
		s.checker = domain.NewTupleConstraintChecker(req.Model)
	}
	s.logger = d.logger.With(zap.String("session_id", s.ID), zap.String("algorithm", s.Algorithm))

	if err := d.persist(ctx, "create", func(uow storage.UnitOfWork) error {
		return uow.Sessions().Create(ctx, s.Session)
	}); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if err := s.SetStatus(domain.StatusRunning); err != nil {
		return nil, err
	}
	d.metrics.SessionStarted(s.Algorithm)
	s.logger.Info("session started",
		zap.Stringer("model", req.Model),
		zap.Int("parallelism", s.Config.Parallelism))

	found, err := d.run(ctx, s)
	if err == nil {
		err = s.SetResult(found)
	}
	if err != nil {
		return d.fail(ctx, s, err)
	}

	d.metrics.CombinationsFound(s.Algorithm, len(found))
	d.metrics.SessionFinished(s.Algorithm, s.Status.String(), s.Rounds)
	s.logger.Info("session complete",
		zap.Int("rounds", s.Rounds),
		zap.Int("executions", s.Executions),
		zap.Stringers("failure_inducing", found))

	storeCtx := context.WithoutCancel(ctx)
	if err := d.persist(storeCtx, "update", func(uow storage.UnitOfWork) error {
		return uow.Sessions().Update(storeCtx, s.Session)
	}); err != nil {
		return s.Session, fmt.Errorf("failed to store session result: %w", err)
	}
	return s.Session, nil
}

// run drives the algorithm and returns its read-out.
func (d *Driver) run(ctx context.Context, s *session) ([]domain.Combination, error) {
	initial, err := d.initialSuite(s)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("initial suite ready", zap.Int("size", len(initial)))

	config, err := domain.NewConfiguration(s.Model,
		domain.WithConstraintChecker(s.checker),
		domain.WithReporter(report.NewZapReporter(s.logger)))
	if err != nil {
		return nil, err
	}
	alg, err := algorithm.New(s.Algorithm, config, algorithm.Options{
		BENProbesPerRound: s.Config.BENProbesPerRound,
	})
	if err != nil {
		return nil, err
	}

	results, err := d.executeBatch(ctx, s, 0, initial)
	if err != nil {
		return nil, err
	}
	s.RecordInitialSuite(results.Len())
	if err := d.checkpoint(ctx, s, 0, results); err != nil {
		return nil, err
	}

	next, err := alg.ComputeNextTestInputs(results)
	for round := 1; err == nil && len(next) > 0; round++ {
		if round > s.Config.MaxRounds {
			return nil, fmt.Errorf("%w: still requesting inputs after %d rounds",
				domain.ErrRoundLimit, s.Config.MaxRounds)
		}
		d.metrics.ProbesRequested(s.Algorithm, len(next))

		if results, err = d.executeBatch(ctx, s, round, next); err != nil {
			return nil, err
		}
		s.RecordRound(results.Len())
		if err := d.checkpoint(ctx, s, round, results); err != nil {
			return nil, err
		}
		next, err = alg.ComputeNextTestInputs(results)
	}
	if err != nil {
		return nil, err
	}
	return alg.ComputeFailureInducingCombinations()
}

// initialSuite returns the request's suite without duplicates, or builds one.
func (d *Driver) initialSuite(s *session) ([]domain.Combination, error) {
	if len(s.req.Initial) > 0 {
		return domain.NewCombinationSet(s.req.Initial...).Slice(), nil
	}
	builder := d.builder
	if builder == nil {
		builder = suite.NewBuilderFromConfig(s.Config)
	}
	initial, err := builder.Build(s.Model, s.checker)
	if err != nil {
		return nil, fmt.Errorf("failed to build initial suite: %w", err)
	}
	return initial, nil
}

// executeBatch runs inputs with bounded parallelism and returns their results
// in input order.
func (d *Driver) executeBatch(ctx context.Context, s *session, round int, inputs []domain.Combination) (*domain.ResultSet, error) {
	executions := make([]domain.Execution, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Config.Parallelism)
	for i, c := range inputs {
		g.Go(func() error {
			exec, err := d.executeOne(gctx, s, c)
			if err != nil {
				return err
			}
			exec.Round = round
			executions[i] = exec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := domain.NewResultSet()
	for _, exec := range executions {
		results.Put(exec.Combination, exec.Result)
	}
	s.executions = executions
	return results, nil
}

// executeOne applies the constraint policy and retries infrastructure errors.
func (d *Driver) executeOne(ctx context.Context, s *session, c domain.Combination) (domain.Execution, error) {
	exec := domain.Execution{Combination: c}

	if !s.checker.IsValid(c) {
		if s.Config.ConstraintPolicy == domain.ConstraintPolicyFail {
			s.logger.Debug("forbidden probe not executed", zap.Stringer("combination", c))
			exec.Result = domain.Failed(fmt.Errorf("%w: %s", domain.ErrForbiddenProbe, c))
			exec.ExecutedAt = time.Now().UTC()
			d.metrics.ExecutionObserved(observability.OutcomeForbidden, 0)
			return exec, nil
		}
		s.logger.Warn("executing probe that violates a forbidden constraint",
			zap.Stringer("combination", c))
	}

	for attempt := 1; ; attempt++ {
		execCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.Config.ExecutionTimeout > 0 {
			execCtx, cancel = context.WithTimeout(ctx, s.Config.ExecutionTimeout)
		}
		start := time.Now()
		result, err := s.req.Executor.Execute(execCtx, c)
		cancel()
		exec.Duration = time.Since(start)
		exec.ExecutedAt = time.Now().UTC()

		if err == nil && result.Outcome != domain.OutcomePass && result.Outcome != domain.OutcomeFail {
			err = fmt.Errorf("executor returned outcome %s", result.Outcome)
		}
		if err == nil {
			exec.Result = result
			d.metrics.ExecutionObserved(outcomeLabel(result), exec.Duration)
			return exec, nil
		}

		d.metrics.ExecutionObserved(observability.OutcomeError, exec.Duration)
		if ctx.Err() != nil {
			return exec, ctx.Err()
		}
		s.logger.Warn("execution attempt failed",
			zap.Stringer("combination", c),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt >= s.Config.MaxAttempts {
			return exec, fmt.Errorf("%w: %s after %d attempts: %w",
				domain.ErrExecutionFailed, c, attempt, err)
		}
	}
}

// checkpoint stores the executions of a round together with the session counters.
func (d *Driver) checkpoint(ctx context.Context, s *session, round int, results *domain.ResultSet) error {
	s.logger.Debug("round executed",
		zap.Int("round", round),
		zap.Int("inputs", results.Len()),
		zap.Int("failed", len(results.Failed())))
	executions := s.executions
	s.executions = nil
	return d.persist(ctx, "checkpoint", func(uow storage.UnitOfWork) error {
		if err := uow.Executions().Record(ctx, s.ID, executions); err != nil {
			return err
		}
		return uow.Sessions().Update(ctx, s.Session)
	})
}

// fail marks the session as failed and stores it.
func (d *Driver) fail(ctx context.Context, s *session, cause error) (*domain.Session, error) {
	s.SetFailed(cause.Error())
	d.metrics.SessionFinished(s.Algorithm, s.Status.String(), s.Rounds)
	s.logger.Error("session failed", zap.Error(cause))

	// The caller's context may already be cancelled; the failure is still recorded.
	storeCtx := context.WithoutCancel(ctx)
	if err := d.persist(storeCtx, "update", func(uow storage.UnitOfWork) error {
		return uow.Sessions().Update(storeCtx, s.Session)
	}); err != nil {
		return s.Session, errors.Join(cause, fmt.Errorf("failed to store session failure: %w", err))
	}
	return s.Session, cause
}

func (d *Driver) persist(ctx context.Context, operation string, fn func(uow storage.UnitOfWork) error) error {
	if d.store == nil {
		return nil
	}
	start := time.Now()
	err := storage.WithTx(ctx, d.store, fn)
	d.metrics.StoreObserved(operation, time.Since(start))
	return err
}

func outcomeLabel(r domain.TestResult) string {
	if r.IsFailed() {
		return observability.OutcomeFail
	}
	return observability.OutcomePass
}
