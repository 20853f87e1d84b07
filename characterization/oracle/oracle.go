// Package oracle simulates a system under test with planted failure-inducing
// combinations. It backs the fake executors and the algorithm tests.
package oracle

import (
	"errors"
	"fmt"

	"github.com/example/faultchar/characterization/domain"
)

// ErrPlantedFailure is the cause carried by every failure the oracle reports.
var ErrPlantedFailure = errors.New("planted failure")

// Oracle fails every full combination containing one of its causes.
type Oracle struct {
	causes []domain.Combination
	exact  *domain.CombinationSet
}

// New creates an oracle failing inputs that contain any of causes.
func New(causes ...domain.Combination) *Oracle {
	return &Oracle{causes: append([]domain.Combination(nil), causes...)}
}

// Exactly creates an oracle failing only the listed full combinations.
func Exactly(failing ...domain.Combination) *Oracle {
	return &Oracle{exact: domain.NewCombinationSet(failing...)}
}

// Causes returns the planted causes.
func (o *Oracle) Causes() []domain.Combination {
	return append([]domain.Combination(nil), o.causes...)
}

// Result evaluates one combination.
func (o *Oracle) Result(c domain.Combination) domain.TestResult {
	if o.exact != nil && o.exact.Contains(c) {
		return domain.Failed(fmt.Errorf("%w: %s", ErrPlantedFailure, c))
	}
	for _, cause := range o.causes {
		if c.Contains(cause) {
			return domain.Failed(fmt.Errorf("%w: %s", ErrPlantedFailure, cause))
		}
	}
	return domain.Passed()
}

// Execute evaluates a batch in order.
func (o *Oracle) Execute(combinations []domain.Combination) *domain.ResultSet {
	results := domain.NewResultSet()
	for _, c := range combinations {
		results.Put(c, o.Result(c))
	}
	return results
}

// Refiner is the subset of the refinement protocol Drive needs.
type Refiner interface {
	ComputeNextTestInputs(newResults *domain.ResultSet) ([]domain.Combination, error)
	ComputeFailureInducingCombinations() ([]domain.Combination, error)
}

// Trace records one Drive run.
type Trace struct {
	// Rounds holds the requested batches in order.
	Rounds [][]domain.Combination
	// Found is the final read-out.
	Found []domain.Combination
}

// Probes returns the total number of requested combinations.
func (t *Trace) Probes() int {
	n := 0
	for _, r := range t.Rounds {
		n += len(r)
	}
	return n
}

// Drive runs r against the oracle, starting from the initial inputs, until it
// requests nothing. It fails after maxRounds refinement rounds.
func (o *Oracle) Drive(r Refiner, initial []domain.Combination, maxRounds int) (*Trace, error) {
	trace := &Trace{}
	next, err := r.ComputeNextTestInputs(o.Execute(initial))
	for err == nil && len(next) > 0 {
		if len(trace.Rounds) == maxRounds {
			return trace, fmt.Errorf("%w: %d rounds", domain.ErrRoundLimit, maxRounds)
		}
		trace.Rounds = append(trace.Rounds, next)
		next, err = r.ComputeNextTestInputs(o.Execute(next))
	}
	if err != nil {
		return trace, err
	}
	trace.Found, err = r.ComputeFailureInducingCombinations()
	return trace, err
}
