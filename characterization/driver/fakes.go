package driver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/oracle"
)

// ErrInjectedInfra is returned by FakeExecutor for injected infrastructure failures.
var ErrInjectedInfra = errors.New("injected infrastructure failure")

// FakeExecutor is a test double for Executor.
// It answers from an oracle with planted failure-inducing combinations.
type FakeExecutor struct {
	mu sync.Mutex

	oracle *oracle.Oracle

	// InfraFailures maps a combination to the number of attempts that fail
	// with ErrInjectedInfra before it executes normally. A negative count
	// fails every attempt.
	InfraFailures map[domain.Combination]int

	// Delay adds artificial delay to Execute calls.
	Delay time.Duration

	// Calls records every executed combination in call order.
	Calls []domain.Combination

	inFlight    int
	maxInFlight int
}

// NewFakeExecutor creates a FakeExecutor failing inputs that contain any of causes.
func NewFakeExecutor(causes ...domain.Combination) *FakeExecutor {
	return &FakeExecutor{
		oracle:        oracle.New(causes...),
		InfraFailures: make(map[domain.Combination]int),
	}
}

// WithOracle replaces the oracle answering Execute.
func (f *FakeExecutor) WithOracle(o *oracle.Oracle) *FakeExecutor {
	f.oracle = o
	return f
}

// WithInfraFailures makes the first n attempts on c fail with ErrInjectedInfra.
func (f *FakeExecutor) WithInfraFailures(c domain.Combination, n int) *FakeExecutor {
	f.InfraFailures[c] = n
	return f
}

// WithDelay sets an artificial delay for executions.
func (f *FakeExecutor) WithDelay(delay time.Duration) *FakeExecutor {
	f.Delay = delay
	return f
}

// Execute implements Executor.
func (f *FakeExecutor) Execute(ctx context.Context, c domain.Combination) (domain.TestResult, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, c)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	remaining, injected := f.InfraFailures[c]
	if injected && remaining > 0 {
		f.InfraFailures[c] = remaining - 1
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return domain.TestResult{}, ctx.Err()
		}
	}

	if injected && remaining != 0 {
		return domain.TestResult{}, ErrInjectedInfra
	}
	return f.oracle.Result(c), nil
}

// GetCalls returns all executed combinations.
func (f *FakeExecutor) GetCalls() []domain.Combination {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Combination(nil), f.Calls...)
}

// MaxConcurrency returns the highest number of overlapping Execute calls seen.
func (f *FakeExecutor) MaxConcurrency() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// Reset clears recorded calls.
func (f *FakeExecutor) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
	f.maxInFlight = 0
}
