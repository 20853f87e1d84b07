package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// TestModel describes a combinatorial input space: the domain size of every
// parameter plus catalogs of forbidden and error sub-combinations.
//
// A TestModel is immutable after construction. Two models with the same
// structure are interchangeable; use Equal or Key to compare them.
type TestModel struct {
	strength       int
	parameterSizes []int
	forbidden      []*TupleList
	errors         []*TupleList

	constraintsOnce sync.Once
	forbiddenCons   []Constraint
	errorCons       []Constraint
}

// NewTestModel creates a validated model.
//
// strength must lie in [0, len(parameterSizes)], every parameter must have at
// least two values, every tuple list must stay inside the input space and tuple
// list ids must be unique across forbidden and error lists combined.
func NewTestModel(strength int, parameterSizes []int, forbidden, errorLists []*TupleList) (*TestModel, error) {
	n := len(parameterSizes)
	if strength < 0 || strength > n {
		return nil, fmt.Errorf("%w: strength must be between 0 and %d, got %d",
			ErrInvalidModel, n, strength)
	}
	for i, size := range parameterSizes {
		if size <= 1 {
			return nil, fmt.Errorf("%w: parameter %d must have at least 2 values, got %d",
				ErrInvalidModel, i, size)
		}
		if size > MaxValue {
			return nil, fmt.Errorf("%w: parameter %d has %d values, at most %d are supported",
				ErrInvalidModel, i, size, MaxValue)
		}
	}

	seen := make(map[int]struct{}, len(forbidden)+len(errorLists))
	check := func(kind string, lists []*TupleList) error {
		for _, l := range lists {
			if l == nil {
				return fmt.Errorf("%w: nil %s tuple list", ErrInvalidModel, kind)
			}
			if _, dup := seen[l.id]; dup {
				return fmt.Errorf("%w: duplicate tuple list id %d", ErrInvalidModel, l.id)
			}
			seen[l.id] = struct{}{}
			for i, p := range l.involvedParameters {
				if p >= n {
					return fmt.Errorf("%w: %s tuple list %d involves parameter %d, model has %d",
						ErrInvalidModel, kind, l.id, p, n)
				}
				for _, tuple := range l.tuples {
					if tuple[i] >= parameterSizes[p] {
						return fmt.Errorf("%w: %s tuple list %d uses value %d for parameter %d of size %d",
							ErrInvalidModel, kind, l.id, tuple[i], p, parameterSizes[p])
					}
				}
			}
		}
		return nil
	}
	if err := check("forbidden", forbidden); err != nil {
		return nil, err
	}
	if err := check("error", errorLists); err != nil {
		return nil, err
	}

	return &TestModel{
		strength:       strength,
		parameterSizes: slices.Clone(parameterSizes),
		forbidden:      slices.Clone(forbidden),
		errors:         slices.Clone(errorLists),
	}, nil
}

// Strength returns the target interaction strength.
func (m *TestModel) Strength() int {
	return m.strength
}

// NumParameters returns the number of parameters.
func (m *TestModel) NumParameters() int {
	return len(m.parameterSizes)
}

// ParameterSizes returns a copy of the parameter domain sizes.
func (m *TestModel) ParameterSizes() []int {
	return slices.Clone(m.parameterSizes)
}

// ParameterSize returns the domain size of parameter i.
func (m *TestModel) ParameterSize(i int) int {
	return m.parameterSizes[i]
}

// ForbiddenTupleLists returns the forbidden tuple lists.
func (m *TestModel) ForbiddenTupleLists() []*TupleList {
	return slices.Clone(m.forbidden)
}

// ErrorTupleLists returns the error tuple lists.
func (m *TestModel) ErrorTupleLists() []*TupleList {
	return slices.Clone(m.errors)
}

// ForbiddenConstraints returns constraints that must never be matched by a test input.
// Built lazily on first use.
func (m *TestModel) ForbiddenConstraints() []Constraint {
	m.buildConstraints()
	return slices.Clone(m.forbiddenCons)
}

// ErrorConstraints returns constraints whose matches deliberately trigger an error path.
// Built lazily on first use.
func (m *TestModel) ErrorConstraints() []Constraint {
	m.buildConstraints()
	return slices.Clone(m.errorCons)
}

func (m *TestModel) buildConstraints() {
	m.constraintsOnce.Do(func() {
		m.forbiddenCons = newConstraints(ConstraintForbidden, m.forbidden, len(m.parameterSizes))
		m.errorCons = newConstraints(ConstraintError, m.errors, len(m.parameterSizes))
	})
}

// ValidateCombination checks that c fits the model. When full is true every
// position must be assigned.
func (m *TestModel) ValidateCombination(c Combination, full bool) error {
	if c.Len() != len(m.parameterSizes) {
		return fmt.Errorf("%w: combination %s has %d positions, model has %d parameters",
			ErrInvalidArgument, c, c.Len(), len(m.parameterSizes))
	}
	for i, size := range m.parameterSizes {
		v := c.At(i)
		if v == NoValue {
			if full {
				return fmt.Errorf("%w: combination %s leaves parameter %d unassigned",
					ErrInvalidArgument, c, i)
			}
			continue
		}
		if v >= size {
			return fmt.Errorf("%w: combination %s uses value %d for parameter %d of size %d",
				ErrInvalidArgument, c, v, i, size)
		}
	}
	return nil
}

// Rotate returns c with every listed position moved to its "next" value,
// (value + 1) mod domain size. Unassigned positions stay unassigned.
func (m *TestModel) Rotate(c Combination, positions []int) Combination {
	for _, p := range positions {
		if v := c.At(p); v != NoValue {
			c = c.With(p, (v+1)%m.parameterSizes[p])
		}
	}
	return c
}

// Equal compares two models structurally.
func (m *TestModel) Equal(other *TestModel) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.strength != other.strength || !slices.Equal(m.parameterSizes, other.parameterSizes) {
		return false
	}
	eq := func(a, b *TupleList) bool { return a.Equal(b) }
	return slices.EqualFunc(m.forbidden, other.forbidden, eq) &&
		slices.EqualFunc(m.errors, other.errors, eq)
}

// Key returns a stable fingerprint; structurally equal models have equal keys.
func (m *TestModel) Key() string {
	return m.String()
}

func (m *TestModel) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TestModel{strength=%d, sizes=%v", m.strength, m.parameterSizes)
	for _, l := range m.forbidden {
		fmt.Fprintf(&b, ", forbidden=%s", l)
	}
	for _, l := range m.errors {
		fmt.Fprintf(&b, ", error=%s", l)
	}
	b.WriteByte('}')
	return b.String()
}

type tupleListJSON struct {
	ID                 int     `json:"id"`
	InvolvedParameters []int   `json:"involved_parameters"`
	Tuples             [][]int `json:"tuples"`
	MarkedAsCorrect    bool    `json:"marked_as_correct,omitempty"`
}

type testModelJSON struct {
	Strength       int             `json:"strength"`
	ParameterSizes []int           `json:"parameter_sizes"`
	Forbidden      []tupleListJSON `json:"forbidden,omitempty"`
	Errors         []tupleListJSON `json:"errors,omitempty"`
}

// MarshalJSON encodes the model structure.
func (m *TestModel) MarshalJSON() ([]byte, error) {
	toJSON := func(lists []*TupleList) []tupleListJSON {
		out := make([]tupleListJSON, len(lists))
		for i, l := range lists {
			out[i] = tupleListJSON{
				ID:                 l.id,
				InvolvedParameters: l.involvedParameters,
				Tuples:             l.tuples,
				MarkedAsCorrect:    l.markedAsCorrect,
			}
		}
		return out
	}
	return json.Marshal(testModelJSON{
		Strength:       m.strength,
		ParameterSizes: m.parameterSizes,
		Forbidden:      toJSON(m.forbidden),
		Errors:         toJSON(m.errors),
	})
}

// UnmarshalTestModel decodes and validates a model produced by MarshalJSON.
func UnmarshalTestModel(data []byte) (*TestModel, error) {
	var raw testModelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	fromJSON := func(lists []tupleListJSON) ([]*TupleList, error) {
		out := make([]*TupleList, len(lists))
		for i, l := range lists {
			tl, err := NewTupleList(l.ID, l.InvolvedParameters, l.Tuples, l.MarkedAsCorrect)
			if err != nil {
				return nil, err
			}
			out[i] = tl
		}
		return out, nil
	}
	forbidden, err := fromJSON(raw.Forbidden)
	if err != nil {
		return nil, err
	}
	errorLists, err := fromJSON(raw.Errors)
	if err != nil {
		return nil, err
	}
	return NewTestModel(raw.Strength, raw.ParameterSizes, forbidden, errorLists)
}
