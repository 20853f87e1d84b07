// Package suspicious provides the bookkeeping shared by characterization
// algorithms that track whole suspected sub-combinations across rounds, and
// two such algorithms, AIFL and BEN.
//
// The first result batch seeds the suspicion set with the relevant
// sub-combinations of every failed input. From then on each passed input
// removes its relevant sub-combinations, so the set only shrinks. The Policy
// decides which shapes are relevant, when to stop and which inputs to probe.
//
// A Policy whose RelevantSubCombinations misses the shape of a real cause
// silently degrades the characterization. This cannot be detected at runtime.
package suspicious

import (
	"fmt"

	"github.com/example/faultchar/characterization/domain"
)

// Policy supplies the algorithm-specific hooks of the scaffold.
type Policy interface {
	// Name identifies the algorithm in reports.
	Name() string

	// RelevantSubCombinations returns the sub-combination shapes of c that
	// may cause a failure.
	RelevantSubCombinations(c domain.Combination) []domain.Combination

	// ShouldGenerateFurtherTestInputs reports whether another round is needed.
	ShouldGenerateFurtherTestInputs(state *State) bool

	// GenerateNextTestInputs proposes the next round. The scaffold drops
	// already executed and duplicate combinations.
	GenerateNextTestInputs(state *State, newResults *domain.ResultSet) []domain.Combination

	// FailureInducingCombinations derives the read-out from the final state.
	FailureInducingCombinations(state *State) []domain.Combination
}

// State is the scaffold's bookkeeping, readable by policies.
type State struct {
	model          *domain.TestModel
	round          int
	suspicious     *domain.CombinationSet
	previous       *domain.CombinationSet
	results        *domain.ResultSet
	initialFailure []domain.Combination
}

// Model returns the input space.
func (s *State) Model() *domain.TestModel { return s.model }

// Round returns the number of result batches processed before the current one.
func (s *State) Round() int { return s.round }

// Suspicious returns the current suspicion set. Callers must not modify it.
func (s *State) Suspicious() *domain.CombinationSet { return s.suspicious }

// Previous returns the suspicion set as it was before the current batch.
func (s *State) Previous() *domain.CombinationSet { return s.previous }

// Changed reports whether the current batch removed or added members.
func (s *State) Changed() bool { return !s.suspicious.Equal(s.previous) }

// Results returns every result received so far. Callers must not modify it.
func (s *State) Results() *domain.ResultSet { return s.results }

// InitialFailures returns the failed inputs of the first batch.
func (s *State) InitialFailures() []domain.Combination {
	return append([]domain.Combination(nil), s.initialFailure...)
}

// Algorithm runs a Policy on the suspicion-set scaffold.
type Algorithm struct {
	policy   Policy
	reporter domain.Reporter
	state    State
	seeded   bool
	finished bool
	reported bool
}

// New creates a scaffold-based algorithm for policy.
func New(config domain.Configuration, policy Policy) (*Algorithm, error) {
	if config.Model == nil {
		return nil, fmt.Errorf("%w: configuration has no model", domain.ErrInvalidArgument)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: policy is required", domain.ErrInvalidArgument)
	}
	config = config.WithDefaults()
	return &Algorithm{
		policy:   policy,
		reporter: config.Reporter,
		state: State{
			model:      config.Model,
			suspicious: domain.NewCombinationSet(),
			previous:   domain.NewCombinationSet(),
			results:    domain.NewResultSet(),
		},
	}, nil
}

// Name returns the policy name.
func (a *Algorithm) Name() string {
	return a.policy.Name()
}

// ComputeNextTestInputs updates the suspicion set with newResults and returns
// the policy's next round, or nothing once the policy is done.
func (a *Algorithm) ComputeNextTestInputs(newResults *domain.ResultSet) ([]domain.Combination, error) {
	if newResults == nil {
		return nil, fmt.Errorf("%w: result batch must not be nil", domain.ErrInvalidArgument)
	}
	if err := newResults.Validate(a.state.model); err != nil {
		return nil, err
	}

	a.state.previous = a.state.suspicious
	working := a.state.suspicious.Clone()
	if !a.seeded {
		for c, r := range newResults.All() {
			if !r.IsFailed() {
				continue
			}
			a.state.initialFailure = append(a.state.initialFailure, c)
			for _, sub := range a.policy.RelevantSubCombinations(c) {
				working.Add(sub)
			}
		}
		a.seeded = true
	}
	for c, r := range newResults.All() {
		if !r.IsSuccessful() {
			continue
		}
		for _, sub := range a.policy.RelevantSubCombinations(c) {
			working.Remove(sub)
		}
	}
	a.state.suspicious = working
	a.state.results.Merge(newResults)
	defer func() { a.state.round++ }()

	if !a.policy.ShouldGenerateFurtherTestInputs(&a.state) {
		a.setFinished(true)
		return nil, nil
	}
	a.setFinished(false)

	generated := a.policy.GenerateNextTestInputs(&a.state, newResults)
	seen := domain.NewCombinationSet()
	var next []domain.Combination
	for _, c := range generated {
		if a.state.results.Contains(c) || !seen.Add(c) {
			continue
		}
		next = append(next, c)
	}
	if len(next) == 0 {
		a.setFinished(true)
		return nil, nil
	}
	a.reporter.ProbesProposed(a.policy.Name(), next)
	return next, nil
}

// ComputeFailureInducingCombinations returns the policy's read-out.
func (a *Algorithm) ComputeFailureInducingCombinations() ([]domain.Combination, error) {
	found := a.policy.FailureInducingCombinations(&a.state)
	if !a.reported {
		for _, c := range found {
			a.reporter.CombinationFound(a.policy.Name(), c)
		}
		a.reported = true
	}
	return found, nil
}

// Suspicious returns the current suspicion set in insertion order.
func (a *Algorithm) Suspicious() []domain.Combination {
	return a.state.suspicious.Slice()
}

// Round returns the number of result batches processed.
func (a *Algorithm) Round() int {
	return a.state.round
}

func (a *Algorithm) setFinished(finished bool) {
	if a.finished == finished {
		return
	}
	from, to := "REFINEMENT", "FINISHED"
	if !finished {
		from, to = to, from
		a.reported = false
	}
	a.finished = finished
	a.reporter.PhaseChanged(a.policy.Name(), from, to)
}
