package suspicious

import (
	"github.com/example/faultchar/characterization/domain"
)

// AIFLName identifies AIFL.
const AIFLName = "aifl"

// AIFL treats every sub-combination of a failed input as suspicious. Round k
// changes each cyclic window of k consecutive parameters of every initially
// failed input. It stops once a round leaves the suspicion set unchanged or
// all window sizes were tried, and reports the minimal remaining suspects.
type AIFL struct{}

// NewAIFL creates the AIFL algorithm.
func NewAIFL(config domain.Configuration) (*Algorithm, error) {
	return New(config, AIFL{})
}

func (AIFL) Name() string { return AIFLName }

func (AIFL) RelevantSubCombinations(c domain.Combination) []domain.Combination {
	return AllSubCombinations(c)
}

func (AIFL) ShouldGenerateFurtherTestInputs(state *State) bool {
	if state.Suspicious().Len() == 0 {
		return false
	}
	windowSize := state.Round() + 1
	if windowSize > state.Model().NumParameters() {
		return false
	}
	return state.Round() == 0 || state.Changed()
}

func (AIFL) GenerateNextTestInputs(state *State, _ *domain.ResultSet) []domain.Combination {
	model := state.Model()
	n := model.NumParameters()
	windowSize := state.Round() + 1

	var next []domain.Combination
	window := make([]int, windowSize)
	for _, failed := range state.InitialFailures() {
		for start := 0; start < n; start++ {
			for i := range window {
				window[i] = (start + i) % n
			}
			next = append(next, model.Rotate(failed, window))
		}
	}
	return next
}

func (AIFL) FailureInducingCombinations(state *State) []domain.Combination {
	return MinimalCombinations(state.Suspicious().Slice())
}
