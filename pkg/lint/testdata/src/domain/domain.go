// Package domain is a stub for testing the faultchar linter.
// It provides minimal type stubs so the linter can analyze code that
// imports the real domain package.
package domain

// Combination is a partial assignment of value indices.
type Combination struct{}

// TupleList is a list of value tuples over some parameters.
type TupleList struct{}

// NewCombination creates a combination from value indices.
func NewCombination(values ...int) Combination { return Combination{} }

// EmptyCombination creates a combination with n unassigned positions.
func EmptyCombination(n int) Combination { return Combination{} }

// NewTupleList creates a tuple list. The id must be positive.
func NewTupleList(id int, involvedParameters []int, tuples [][]int, markedAsCorrect bool) (*TupleList, error) {
	return nil, nil
}

// ResultSet is a batch of results.
type ResultSet struct{}
