package domain

import (
	"fmt"
	"iter"
)

// TestOutcome represents the outcome of executing one test input.
type TestOutcome int

const (
	OutcomeUnknown TestOutcome = iota
	OutcomePass                // Test input passed
	OutcomeFail                // Test input failed
)

func (o TestOutcome) String() string {
	switch o {
	case OutcomePass:
		return "PASS"
	case OutcomeFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// TestResult is the outcome of one executed test input.
// A failure may carry a cause; the engine never inspects it.
type TestResult struct {
	Outcome TestOutcome
	Cause   error
}

// Passed returns a successful result.
func Passed() TestResult {
	return TestResult{Outcome: OutcomePass}
}

// Failed returns a failed result with an optional cause.
func Failed(cause error) TestResult {
	return TestResult{Outcome: OutcomeFail, Cause: cause}
}

// IsSuccessful returns true if the test input passed.
func (r TestResult) IsSuccessful() bool {
	return r.Outcome == OutcomePass
}

// IsFailed returns true if the test input failed.
func (r TestResult) IsFailed() bool {
	return r.Outcome == OutcomeFail
}

func (r TestResult) String() string {
	if r.Outcome == OutcomeFail && r.Cause != nil {
		return fmt.Sprintf("FAIL(%v)", r.Cause)
	}
	return r.Outcome.String()
}

// ResultSet maps executed combinations to their results, preserving insertion order.
//
// It serves both as a batch of new results handed to an algorithm and as an
// algorithm's accumulated covering array. Putting a combination that is already
// present is a no-op: the first observed result wins.
type ResultSet struct {
	order   []Combination
	results map[Combination]TestResult
}

// NewResultSet creates an empty result set.
func NewResultSet() *ResultSet {
	return &ResultSet{results: make(map[Combination]TestResult)}
}

// Put records the result for c. Returns false if c was already present.
func (s *ResultSet) Put(c Combination, r TestResult) bool {
	if _, ok := s.results[c]; ok {
		return false
	}
	s.order = append(s.order, c)
	s.results[c] = r
	return true
}

// Get returns the result recorded for c.
func (s *ResultSet) Get(c Combination) (TestResult, bool) {
	r, ok := s.results[c]
	return r, ok
}

// Contains returns true if a result for c is recorded.
func (s *ResultSet) Contains(c Combination) bool {
	_, ok := s.results[c]
	return ok
}

// Len returns the number of recorded combinations.
func (s *ResultSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Combinations returns the recorded combinations in insertion order.
func (s *ResultSet) Combinations() []Combination {
	out := make([]Combination, len(s.order))
	copy(out, s.order)
	return out
}

// All iterates over (combination, result) pairs in insertion order.
func (s *ResultSet) All() iter.Seq2[Combination, TestResult] {
	return func(yield func(Combination, TestResult) bool) {
		for _, c := range s.order {
			if !yield(c, s.results[c]) {
				return
			}
		}
	}
}

// Failed returns the failed combinations in insertion order.
func (s *ResultSet) Failed() []Combination {
	var out []Combination
	for c, r := range s.All() {
		if r.IsFailed() {
			out = append(out, c)
		}
	}
	return out
}

// Merge puts every entry of other into s and returns how many were new.
func (s *ResultSet) Merge(other *ResultSet) int {
	added := 0
	for c, r := range other.All() {
		if s.Put(c, r) {
			added++
		}
	}
	return added
}

// Clone returns an independent copy.
func (s *ResultSet) Clone() *ResultSet {
	clone := NewResultSet()
	clone.Merge(s)
	return clone
}

// Validate checks that s is a non-empty batch of full combinations inside the
// model's input space, each carrying a pass or fail outcome.
func (s *ResultSet) Validate(model *TestModel) error {
	if s.Len() == 0 {
		return fmt.Errorf("%w: result batch must not be empty", ErrInvalidArgument)
	}
	for c, r := range s.All() {
		if err := model.ValidateCombination(c, true); err != nil {
			return err
		}
		if r.Outcome != OutcomePass && r.Outcome != OutcomeFail {
			return fmt.Errorf("%w: result for %s has outcome %s",
				ErrInvalidArgument, c, r.Outcome)
		}
	}
	return nil
}
