package driver

import (
	"context"
	"fmt"

	"github.com/example/faultchar/characterization/domain"
)

// Executor runs one full combination against the system under test.
//
// A returned error means the input could not be executed (infrastructure
// failure, timeout, cancellation) and is retried by the driver. A failing
// test is reported through the result, not the error.
type Executor interface {
	Execute(ctx context.Context, c domain.Combination) (domain.TestResult, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, c domain.Combination) (domain.TestResult, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, c domain.Combination) (domain.TestResult, error) {
	return f(ctx, c)
}

// Request contains everything needed to run one characterization session.
type Request struct {
	// Model is the input space being characterized.
	Model *domain.TestModel

	// Config is the session configuration. Zero values take defaults.
	Config domain.SessionConfig

	// Initial is the initial suite. When empty, a suite covering all
	// strength-wise tuples of the model is generated.
	Initial []domain.Combination

	// Executor runs test inputs.
	Executor Executor

	// ConstraintChecker overrides the checker derived from the model.
	ConstraintChecker domain.ConstraintChecker
}

// Validate checks that the request is valid.
func (r *Request) Validate() error {
	if r.Model == nil {
		return fmt.Errorf("%w: model is required", domain.ErrInvalidArgument)
	}
	if r.Executor == nil {
		return fmt.Errorf("%w: executor is required", domain.ErrInvalidArgument)
	}
	for i, c := range r.Initial {
		if err := r.Model.ValidateCombination(c, true); err != nil {
			return fmt.Errorf("initial input %d: %w", i, err)
		}
	}
	r.Config = r.Config.WithDefaults()
	return r.Config.Validate()
}
