package suite

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/faultchar/characterization/domain"
)

func mustModel(t *testing.T, strength int, sizes []int, forbidden ...*domain.TupleList) *domain.TestModel {
	t.Helper()
	model, err := domain.NewTestModel(strength, sizes, forbidden, nil)
	if err != nil {
		t.Fatalf("NewTestModel() error = %v", err)
	}
	return model
}

func TestGreedyBuilderCoversAllTuples(t *testing.T) {
	tests := []struct {
		name     string
		strength int
		sizes    []int
	}{
		{"pairwise binary", 2, []int{2, 2, 2, 2, 2}},
		{"pairwise mixed", 2, []int{3, 2, 4, 3}},
		{"three-way", 3, []int{2, 3, 2, 2}},
		{"single parameter", 1, []int{5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := mustModel(t, tt.strength, tt.sizes)
			rows, err := NewGreedyBuilder(42, 20).Build(model, nil)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			g := newGenerator(model, domain.NewTupleConstraintChecker(model), 1)
			uncovered := g.validTuples()
			for _, row := range rows {
				if !row.IsFull() {
					t.Errorf("row %s is not full", row)
				}
				if err := model.ValidateCombination(row, true); err != nil {
					t.Errorf("row %s invalid: %v", row, err)
				}
				for _, tuple := range g.tuplesOf(row) {
					uncovered.Remove(tuple)
				}
			}
			if uncovered.Len() != 0 {
				t.Errorf("%d tuples uncovered, first %s", uncovered.Len(), uncovered.Slice()[0])
			}
		})
	}
}

func TestGreedyBuilderIsSmallerThanExhaustive(t *testing.T) {
	model := mustModel(t, 2, []int{3, 3, 3, 3, 3})
	rows, err := NewGreedyBuilder(7, 50).Build(model, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	// 243 exhaustive rows, 9 is the lower bound for pairwise 3^5.
	if len(rows) < 9 || len(rows) > 40 {
		t.Errorf("len(rows) = %d, want between 9 and 40", len(rows))
	}
}

func TestGreedyBuilderDeterministicWithSeed(t *testing.T) {
	model := mustModel(t, 2, []int{3, 2, 3, 2})
	comparer := cmp.Comparer(func(a, b domain.Combination) bool { return a == b })

	first, err := NewGreedyBuilder(99, 10).Build(model, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := NewGreedyBuilder(99, 10).Build(model, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff(first, second, comparer); diff != "" {
		t.Errorf("suites differ (-first +second):\n%s", diff)
	}
}

func TestGreedyBuilderHonoursForbiddenTuples(t *testing.T) {
	forbidden, err := domain.NewTupleList(1, []int{0, 1}, [][]int{{0, 0}, {1, 1}}, false)
	if err != nil {
		t.Fatalf("NewTupleList() error = %v", err)
	}
	model := mustModel(t, 2, []int{2, 2, 2}, forbidden)

	rows, err := NewGreedyBuilder(5, 10).Build(model, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	checker := domain.NewTupleConstraintChecker(model)
	for _, row := range rows {
		if !checker.IsValid(row) {
			t.Errorf("row %s violates %v", row, checker.Violations(row))
		}
	}
}

func TestGreedyBuilderStrengthZero(t *testing.T) {
	model := mustModel(t, 0, []int{2, 3})
	rows, err := NewGreedyBuilder(1, 5).Build(model, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(rows) != 1 || !rows[0].IsFull() {
		t.Errorf("rows = %v, want one full combination", rows)
	}
}

func TestGreedyBuilderErrors(t *testing.T) {
	if _, err := NewGreedyBuilder(1, 5).Build(nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("nil model: error = %v, want ErrInvalidArgument", err)
	}
	model := mustModel(t, 1, []int{2, 2})
	if _, err := NewGreedyBuilder(1, 0).Build(model, nil); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("zero candidates: error = %v, want ErrInvalidConfig", err)
	}

	everything, err := domain.NewTupleList(1, []int{0}, [][]int{{0}, {1}}, false)
	if err != nil {
		t.Fatalf("NewTupleList() error = %v", err)
	}
	blocked := mustModel(t, 1, []int{2, 2}, everything)
	if _, err := NewGreedyBuilder(1, 5).Build(blocked, nil); !errors.Is(err, domain.ErrInvalidModel) {
		t.Errorf("unsatisfiable model: error = %v, want ErrInvalidModel", err)
	}
}

func TestPositionSubsets(t *testing.T) {
	got := positionSubsets(4, 2)
	want := [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positionSubsets() mismatch (-want +got):\n%s", diff)
	}
	if positionSubsets(2, 3) != nil {
		t.Error("expected nil for k > n")
	}
}

func TestNewBuilderFromConfig(t *testing.T) {
	b := NewBuilderFromConfig(domain.SessionConfig{SuiteSeed: 3})
	if b.seed != 3 || b.candidates != domain.DefaultSessionConfig().SuiteCandidates {
		t.Errorf("builder = %+v", b)
	}
}
