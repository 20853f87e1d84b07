// Package idd implements Improved Delta Debugging, a binary-search isolator
// for failure-inducing combinations.
//
// For every failed input that no discovered combination explains, the
// isolator compares the input with the most similar passed input, bisects the
// differing positions with one probe at a time and checks the related
// positions found so far with a probe that changes everything else. A passing
// check records them as a failure-inducing combination; a failing check
// means more related positions remain and a fresh comparison is made. Once
// every position is related the failed input itself is recorded. Isolating one
// causal position costs O(log d) probes, where d is the number of positions
// still under suspicion.
//
// Known limitations: probes are never checked against the model's forbidden
// or error constraints, and overlapping failure-inducing combinations inside
// one failed input are not reliably separated.
package idd

import (
	"fmt"
	"slices"

	"github.com/example/faultchar/characterization/domain"
)

// Name identifies the algorithm in reports.
const Name = "idd"

// ImprovedDeltaDebugging isolates failure-inducing combinations with exactly
// one outstanding probe at a time. It must not be shared between goroutines.
type ImprovedDeltaDebugging struct {
	model    *domain.TestModel
	reporter domain.Reporter

	// results is the covering array: every combination seen so far.
	results *domain.ResultSet
	found   []domain.Combination

	phase   phase
	pending *domain.Combination
	probes  int
}

// New creates an isolator for the configured model.
func New(config domain.Configuration) (*ImprovedDeltaDebugging, error) {
	if config.Model == nil {
		return nil, fmt.Errorf("%w: configuration has no model", domain.ErrInvalidArgument)
	}
	config = config.WithDefaults()
	return &ImprovedDeltaDebugging{
		model:    config.Model,
		reporter: config.Reporter,
		results:  domain.NewResultSet(),
		phase:    initialization{},
	}, nil
}

// ComputeNextTestInputs records newResults and returns the next probe, or
// nothing once every failed input is explained.
//
// After a probe was requested, newResults must contain it.
func (a *ImprovedDeltaDebugging) ComputeNextTestInputs(newResults *domain.ResultSet) ([]domain.Combination, error) {
	if newResults == nil {
		return nil, fmt.Errorf("%w: result batch must not be nil", domain.ErrInvalidArgument)
	}
	if err := newResults.Validate(a.model); err != nil {
		return nil, err
	}
	if a.pending != nil && !newResults.Contains(*a.pending) {
		return nil, fmt.Errorf("%w: result batch is missing outstanding probe %s",
			domain.ErrInvalidState, *a.pending)
	}
	a.results.Merge(newResults)

	var (
		probe domain.Combination
		ok    bool
	)
	if a.pending != nil {
		outstanding := *a.pending
		a.pending = nil
		result, _ := a.results.Get(outstanding)
		probe, ok = a.advance(result)
	} else {
		probe, ok = a.startIsolation()
	}
	return a.emit(probe, ok), nil
}

// ComputeFailureInducingCombinations returns the combinations confirmed so far.
// It fails while a probe is outstanding.
func (a *ImprovedDeltaDebugging) ComputeFailureInducingCombinations() ([]domain.Combination, error) {
	if a.pending != nil {
		return nil, fmt.Errorf("%w: isolation in phase %s awaits probe %s",
			domain.ErrInvalidState, a.phase, *a.pending)
	}
	return slices.Clone(a.found), nil
}

// Phase returns the name of the current state.
func (a *ImprovedDeltaDebugging) Phase() string {
	return a.phase.String()
}

// ProbeCount returns the number of probes requested so far.
func (a *ImprovedDeltaDebugging) ProbeCount() int {
	return a.probes
}

// emit turns the next probe into the outstanding request. Probes that are
// already in the covering array are answered from it without a request.
func (a *ImprovedDeltaDebugging) emit(probe domain.Combination, ok bool) []domain.Combination {
	for ok {
		result, known := a.results.Get(probe)
		if !known {
			a.pending = &probe
			a.probes++
			a.reporter.ProbesProposed(Name, []domain.Combination{probe})
			return []domain.Combination{probe}
		}
		probe, ok = a.advance(result)
	}
	return nil
}

// advance applies the result of the outstanding probe to the current phase.
func (a *ImprovedDeltaDebugging) advance(result domain.TestResult) (domain.Combination, bool) {
	switch p := a.phase.(type) {
	case *isolation:
		return a.afterIsolation(p, result)
	case *check:
		return a.afterCheck(p, result)
	default:
		return a.startIsolation()
	}
}

// startIsolation picks the next unexplained failed input, or finishes.
func (a *ImprovedDeltaDebugging) startIsolation() (domain.Combination, bool) {
	a.setPhase(initialization{})
	failed, ok := a.nextUnexplainedFailure()
	if !ok {
		a.setPhase(finished{})
		return domain.Combination{}, false
	}
	return a.isolate(&isolationRun{failed: failed})
}

// isolate derives a fresh suspicious schema for run and starts bisecting it.
func (a *ImprovedDeltaDebugging) isolate(run *isolationRun) (domain.Combination, bool) {
	run.unrelated = nil
	if passed, ok := a.nearestPassed(run); ok {
		run.suspicious = differingPositions(run.failed, passed)
	} else {
		run.suspicious = complement(a.model.NumParameters(), run.related)
	}
	if len(run.suspicious) == 0 {
		return a.confirm(run)
	}
	return a.bisect(run)
}

// bisect emits the probe for the current suspicious positions.
func (a *ImprovedDeltaDebugging) bisect(run *isolationRun) (domain.Combination, bool) {
	if len(run.suspicious) == 1 {
		run.related = union(run.related, run.suspicious)
		run.suspicious = nil
		a.setPhase(&check{run: run})
		return a.model.Rotate(run.failed, complement(a.model.NumParameters(), run.related)), true
	}

	half := len(run.suspicious) / 2
	next := &isolation{
		run:    run,
		first:  slices.Clone(run.suspicious[:half]),
		second: slices.Clone(run.suspicious[half:]),
	}
	a.setPhase(next)
	return a.model.Rotate(run.failed, union(run.unrelated, next.first)), true
}

func (a *ImprovedDeltaDebugging) afterIsolation(p *isolation, result domain.TestResult) (domain.Combination, bool) {
	run := p.run
	if result.IsSuccessful() {
		// Changing first removed the failure: the cause lies in first.
		run.suspicious = p.first
	} else {
		run.unrelated = union(run.unrelated, p.first)
		run.suspicious = p.second
	}
	return a.bisect(run)
}

func (a *ImprovedDeltaDebugging) afterCheck(p *check, result domain.TestResult) (domain.Combination, bool) {
	if result.IsSuccessful() || len(p.run.related) == a.model.NumParameters() {
		return a.confirm(p.run)
	}
	// The failure survived changing everything else: more positions are related.
	return a.isolate(p.run)
}

// confirm records run.related as a failure-inducing combination and moves on.
func (a *ImprovedDeltaDebugging) confirm(run *isolationRun) (domain.Combination, bool) {
	combination := run.failed.Project(run.related)
	if !slices.Contains(a.found, combination) {
		a.found = append(a.found, combination)
		a.reporter.CombinationFound(Name, combination)
	}
	return a.startIsolation()
}

// nextUnexplainedFailure returns the first failed input, in covering array
// order, that contains no discovered combination.
func (a *ImprovedDeltaDebugging) nextUnexplainedFailure() (domain.Combination, bool) {
	for c, r := range a.results.All() {
		if r.IsFailed() && !a.explained(c) {
			return c, true
		}
	}
	return domain.Combination{}, false
}

func (a *ImprovedDeltaDebugging) explained(c domain.Combination) bool {
	for _, f := range a.found {
		if c.Contains(f) {
			return true
		}
	}
	return false
}

// nearestPassed returns the passed input that agrees with run.failed on every
// related position and on the most other positions. Ties go to the earliest
// input in covering array order.
func (a *ImprovedDeltaDebugging) nearestPassed(run *isolationRun) (domain.Combination, bool) {
	var (
		best      domain.Combination
		bestScore = -1
	)
	for c, r := range a.results.All() {
		if !r.IsSuccessful() {
			continue
		}
		score, agrees := agreement(run.failed, c, run.related)
		if agrees && score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore >= 0
}

// agreement counts positions outside related where a and b are equal. agrees
// is false if they differ on any related position.
func agreement(a, b domain.Combination, related []int) (score int, agrees bool) {
	for i := 0; i < a.Len(); i++ {
		same := a.At(i) == b.At(i)
		if contains(related, i) {
			if !same {
				return 0, false
			}
			continue
		}
		if same {
			score++
		}
	}
	return score, true
}

func differingPositions(a, b domain.Combination) []int {
	var out []int
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			out = append(out, i)
		}
	}
	return out
}

func (a *ImprovedDeltaDebugging) setPhase(next phase) {
	if prev := a.phase.String(); prev != next.String() {
		a.reporter.PhaseChanged(Name, prev, next.String())
	}
	a.phase = next
}
