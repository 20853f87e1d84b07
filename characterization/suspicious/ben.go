package suspicious

import (
	"fmt"

	"github.com/example/faultchar/characterization/domain"
)

// BENName identifies BEN.
const BENName = "ben"

// DefaultProbesPerRound is the number of suspects BEN probes per round when
// none is configured.
const DefaultProbesPerRound = 3

// BEN suspects the sub-combinations of exactly the model strength. Every
// round it probes a few untested suspects, each with an input that keeps the
// suspect and changes every other position of a failed input containing it.
// A suspect is reported when its probe failed and no passed input cleared it.
type BEN struct {
	probesPerRound int
	strength       int

	// probes maps a probed suspect to its dedicated input.
	probes map[domain.Combination]domain.Combination
}

// NewBEN creates the BEN algorithm. probesPerRound 0 selects DefaultProbesPerRound.
func NewBEN(config domain.Configuration, probesPerRound int) (*Algorithm, error) {
	if config.Model == nil {
		return nil, fmt.Errorf("%w: configuration has no model", domain.ErrInvalidArgument)
	}
	if config.Model.Strength() < 1 {
		return nil, fmt.Errorf("%w: BEN needs a model strength of at least 1", domain.ErrInvalidConfig)
	}
	if probesPerRound < 0 {
		return nil, fmt.Errorf("%w: probes per round must not be negative, got %d",
			domain.ErrInvalidConfig, probesPerRound)
	}
	if probesPerRound == 0 {
		probesPerRound = DefaultProbesPerRound
	}
	return New(config, &BEN{
		probesPerRound: probesPerRound,
		strength:       config.Model.Strength(),
		probes:         make(map[domain.Combination]domain.Combination),
	})
}

func (*BEN) Name() string { return BENName }

func (b *BEN) RelevantSubCombinations(c domain.Combination) []domain.Combination {
	return SubCombinations(c, b.strength)
}

func (b *BEN) ShouldGenerateFurtherTestInputs(state *State) bool {
	for c := range state.Suspicious().All() {
		if _, probed := b.probes[c]; !probed {
			return true
		}
	}
	return false
}

func (b *BEN) GenerateNextTestInputs(state *State, _ *domain.ResultSet) []domain.Combination {
	model := state.Model()
	var next []domain.Combination
	for suspect := range state.Suspicious().All() {
		if len(next) == b.probesPerRound {
			break
		}
		if _, probed := b.probes[suspect]; probed {
			continue
		}
		failed, ok := failureContaining(state, suspect)
		if !ok {
			continue
		}
		probe := model.Rotate(failed, unassigned(suspect))
		b.probes[suspect] = probe
		// Known probes are resolved by the read-out without execution.
		if !state.Results().Contains(probe) {
			next = append(next, probe)
		}
	}
	return next
}

func (b *BEN) FailureInducingCombinations(state *State) []domain.Combination {
	var found []domain.Combination
	for suspect := range state.Suspicious().All() {
		probe, probed := b.probes[suspect]
		if !probed {
			continue
		}
		if r, ok := state.Results().Get(probe); ok && r.IsFailed() {
			found = append(found, suspect)
		}
	}
	return found
}

func failureContaining(state *State, c domain.Combination) (domain.Combination, bool) {
	for input, r := range state.Results().All() {
		if r.IsFailed() && input.Contains(c) {
			return input, true
		}
	}
	return domain.Combination{}, false
}

func unassigned(c domain.Combination) []int {
	var out []int
	for i := 0; i < c.Len(); i++ {
		if !c.IsSet(i) {
			out = append(out, i)
		}
	}
	return out
}
