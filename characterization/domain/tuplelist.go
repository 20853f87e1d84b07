package domain

import (
	"fmt"
	"slices"
	"sort"
)

// TupleList is a catalog of value tuples over a fixed set of parameters.
//
// Only the projection onto the involved parameters is stored, so a tuple has
// one value per involved parameter rather than one per model parameter.
type TupleList struct {
	id                 int
	involvedParameters []int
	tuples             [][]int
	markedAsCorrect    bool
}

// NewTupleList creates a validated tuple list.
//
// The involved parameters are stored sorted; tuple values are reordered along
// with them so each tuple keeps describing the same assignment.
func NewTupleList(id int, involvedParameters []int, tuples [][]int, markedAsCorrect bool) (*TupleList, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: tuple list id must be positive, got %d", ErrInvalidModel, id)
	}
	if len(involvedParameters) == 0 {
		return nil, fmt.Errorf("%w: tuple list %d has no involved parameters", ErrInvalidModel, id)
	}
	if len(tuples) == 0 {
		return nil, fmt.Errorf("%w: tuple list %d has no tuples", ErrInvalidModel, id)
	}

	order := make([]int, len(involvedParameters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return involvedParameters[order[a]] < involvedParameters[order[b]]
	})

	params := make([]int, len(involvedParameters))
	for i, src := range order {
		params[i] = involvedParameters[src]
		if params[i] < 0 {
			return nil, fmt.Errorf("%w: tuple list %d involves negative parameter %d",
				ErrInvalidModel, id, params[i])
		}
		if i > 0 && params[i] == params[i-1] {
			return nil, fmt.Errorf("%w: tuple list %d involves parameter %d twice",
				ErrInvalidModel, id, params[i])
		}
	}

	stored := make([][]int, len(tuples))
	for t, tuple := range tuples {
		if len(tuple) != len(params) {
			return nil, fmt.Errorf("%w: tuple list %d: tuple %d has %d values, want %d",
				ErrInvalidModel, id, t, len(tuple), len(params))
		}
		row := make([]int, len(params))
		for i, src := range order {
			if tuple[src] < 0 {
				return nil, fmt.Errorf("%w: tuple list %d: tuple %d has negative value %d",
					ErrInvalidModel, id, t, tuple[src])
			}
			row[i] = tuple[src]
		}
		stored[t] = row
	}

	return &TupleList{
		id:                 id,
		involvedParameters: params,
		tuples:             stored,
		markedAsCorrect:    markedAsCorrect,
	}, nil
}

// ID returns the tuple list identifier.
func (l *TupleList) ID() int {
	return l.id
}

// InvolvedParameters returns a copy of the sorted involved parameter indices.
func (l *TupleList) InvolvedParameters() []int {
	return slices.Clone(l.involvedParameters)
}

// Tuples returns a deep copy of the stored tuples.
func (l *TupleList) Tuples() [][]int {
	out := make([][]int, len(l.tuples))
	for i, t := range l.tuples {
		out[i] = slices.Clone(t)
	}
	return out
}

// MarkedAsCorrect reports whether downstream consumers should treat the tuples as known-valid.
func (l *TupleList) MarkedAsCorrect() bool {
	return l.markedAsCorrect
}

// Equal compares two tuple lists structurally.
func (l *TupleList) Equal(other *TupleList) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.id != other.id || l.markedAsCorrect != other.markedAsCorrect {
		return false
	}
	if !slices.Equal(l.involvedParameters, other.involvedParameters) {
		return false
	}
	return slices.EqualFunc(l.tuples, other.tuples, func(a, b []int) bool {
		return slices.Equal(a, b)
	})
}

// String renders the tuple list for diagnostics.
func (l *TupleList) String() string {
	return fmt.Sprintf("TupleList{id=%d, parameters=%v, tuples=%v, correct=%t}",
		l.id, l.involvedParameters, l.tuples, l.markedAsCorrect)
}

// combinations expands every tuple into a partial combination of the given length.
func (l *TupleList) combinations(numParameters int) []Combination {
	out := make([]Combination, len(l.tuples))
	for t, tuple := range l.tuples {
		values := make([]int, numParameters)
		for i := range values {
			values[i] = NoValue
		}
		for i, p := range l.involvedParameters {
			values[p] = tuple[i]
		}
		out[t] = NewCombination(values...)
	}
	return out
}
