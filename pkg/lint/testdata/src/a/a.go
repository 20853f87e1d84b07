// Package a is a test package for the faultchar linter.
package a

import "domain"

type algorithm interface {
	ComputeNextTestInputs(results *domain.ResultSet) ([]domain.Combination, error)
	ComputeFailureInducingCombinations() ([]domain.Combination, error)
}

const noID = 0

// Test cases

func discardedProbes(alg algorithm, results *domain.ResultSet) {
	alg.ComputeNextTestInputs(results) // want "result of ComputeNextTestInputs discarded"
}

func blankProbes(alg algorithm, results *domain.ResultSet) error {
	_, err := alg.ComputeNextTestInputs(results) // want "assigned to blank identifier"
	return err
}

func discardedReadOut(alg algorithm) {
	alg.ComputeFailureInducingCombinations() // want "result of ComputeFailureInducingCombinations discarded"
}

func zeroID() {
	domain.NewTupleList(0, []int{0}, [][]int{{1}}, false) // want "NewTupleList called with non-positive id 0"
}

func negativeID() {
	domain.NewTupleList(-2, []int{0}, [][]int{{1}}, false) // want "NewTupleList called with non-positive id -2"
}

func constantID() {
	domain.NewTupleList(noID, []int{0}, [][]int{{1}}, false) // want "NewTupleList called with non-positive id 0"
}

func emptyCombination() {
	_ = domain.NewCombination() // want "NewCombination called without values"
}

// Valid cases - should NOT produce warnings

func validDriverLoop(alg algorithm, execute func([]domain.Combination) *domain.ResultSet, results *domain.ResultSet) ([]domain.Combination, error) {
	next, err := alg.ComputeNextTestInputs(results)
	for err == nil && len(next) > 0 {
		next, err = alg.ComputeNextTestInputs(execute(next))
	}
	if err != nil {
		return nil, err
	}
	return alg.ComputeFailureInducingCombinations()
}

func validTupleList(id int) {
	_, _ = domain.NewTupleList(1, []int{0}, [][]int{{1}}, false)
	_, _ = domain.NewTupleList(id, []int{0}, [][]int{{1}}, false)
}

func validCombination() {
	_ = domain.NewCombination(0, 1)
	_ = domain.EmptyCombination(3)
}
