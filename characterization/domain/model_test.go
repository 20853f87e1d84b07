package domain

import (
	"errors"
	"testing"
)

func mustTupleList(t *testing.T, id int, params []int, tuples [][]int) *TupleList {
	t.Helper()
	l, err := NewTupleList(id, params, tuples, false)
	if err != nil {
		t.Fatalf("NewTupleList: %v", err)
	}
	return l
}

func TestNewTupleListSortsParameters(t *testing.T) {
	l := mustTupleList(t, 1, []int{2, 0}, [][]int{{1, 0}, {0, 1}})

	if got := l.InvolvedParameters(); got[0] != 0 || got[1] != 2 {
		t.Errorf("InvolvedParameters() = %v, want [0 2]", got)
	}
	tuples := l.Tuples()
	if tuples[0][0] != 0 || tuples[0][1] != 1 {
		t.Errorf("first tuple = %v, want [0 1]", tuples[0])
	}

	tuples[0][0] = 9
	if l.Tuples()[0][0] == 9 {
		t.Error("Tuples() exposes internal state")
	}
}

func TestNewTupleListErrors(t *testing.T) {
	tests := []struct {
		name   string
		id     int
		params []int
		tuples [][]int
	}{
		{"zero id", 0, []int{0}, [][]int{{0}}},
		{"no parameters", 1, nil, [][]int{{0}}},
		{"no tuples", 1, []int{0}, nil},
		{"negative parameter", 1, []int{-1}, [][]int{{0}}},
		{"duplicate parameter", 1, []int{1, 1}, [][]int{{0, 0}}},
		{"arity", 1, []int{0, 1}, [][]int{{0}}},
		{"negative value", 1, []int{0}, [][]int{{-1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTupleList(tt.id, tt.params, tt.tuples, false)
			if !errors.Is(err, ErrInvalidModel) {
				t.Errorf("err = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestNewTestModelErrors(t *testing.T) {
	l1 := mustTupleList(t, 1, []int{0}, [][]int{{0}})
	l1dup := mustTupleList(t, 1, []int{1}, [][]int{{0}})
	outside := mustTupleList(t, 2, []int{3}, [][]int{{0}})
	bigValue := mustTupleList(t, 3, []int{0}, [][]int{{5}})

	tests := []struct {
		name      string
		strength  int
		sizes     []int
		forbidden []*TupleList
		errs      []*TupleList
	}{
		{"negative strength", -1, []int{2, 2}, nil, nil},
		{"strength too large", 3, []int{2, 2}, nil, nil},
		{"single value parameter", 1, []int{2, 1}, nil, nil},
		{"domain too large", 1, []int{2, MaxValue + 1}, nil, nil},
		{"duplicate ids", 1, []int{2, 2}, []*TupleList{l1}, []*TupleList{l1dup}},
		{"parameter outside", 1, []int{2, 2}, []*TupleList{outside}, nil},
		{"value outside", 1, []int{2, 2}, []*TupleList{bigValue}, nil},
		{"nil list", 1, []int{2, 2}, []*TupleList{nil}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTestModel(tt.strength, tt.sizes, tt.forbidden, tt.errs)
			if !errors.Is(err, ErrInvalidModel) {
				t.Errorf("err = %v, want ErrInvalidModel", err)
			}
		})
	}
}

func TestTestModelValidateCombination(t *testing.T) {
	m, err := NewTestModel(2, []int{2, 3}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		c       Combination
		full    bool
		wantErr bool
	}{
		{"full", NewCombination(1, 2), true, false},
		{"partial allowed", NewCombination(NoValue, 2), false, false},
		{"partial rejected", NewCombination(NoValue, 2), true, true},
		{"wrong length", NewCombination(1), false, true},
		{"value too large", NewCombination(2, 0), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.ValidateCombination(tt.c, tt.full)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %t", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestTestModelRotate(t *testing.T) {
	m, err := NewTestModel(1, []int{2, 3, 2}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := m.Rotate(NewCombination(1, 2, NoValue), []int{0, 1, 2})
	if want := NewCombination(0, 0, NoValue); got != want {
		t.Errorf("Rotate() = %s, want %s", got, want)
	}
}

func TestTestModelJSONRoundTrip(t *testing.T) {
	forbidden := mustTupleList(t, 1, []int{0, 1}, [][]int{{1, 0}})
	errList, err := NewTupleList(2, []int{2}, [][]int{{1}}, true)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewTestModel(2, []int{2, 2, 3}, []*TupleList{forbidden}, []*TupleList{errList})
	if err != nil {
		t.Fatal(err)
	}

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	back, err := UnmarshalTestModel(data)
	if err != nil {
		t.Fatalf("UnmarshalTestModel: %v", err)
	}
	if !m.Equal(back) || m.Key() != back.Key() {
		t.Errorf("round trip changed model: %s != %s", back, m)
	}

	if _, err := UnmarshalTestModel([]byte(`{"strength": 5, "parameter_sizes": [2]}`)); !errors.Is(err, ErrInvalidModel) {
		t.Errorf("invalid model: err = %v, want ErrInvalidModel", err)
	}
}

func TestTestModelCopiesParameterSizes(t *testing.T) {
	sizes := []int{2, 3, 4}
	m, err := NewTestModel(1, sizes, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	sizes[0] = 99
	if got := m.ParameterSize(0); got != 2 {
		t.Errorf("ParameterSize(0) = %d after mutating the argument, want 2", got)
	}

	got := m.ParameterSizes()
	got[1] = 99
	if again := m.ParameterSizes(); again[1] != 3 {
		t.Errorf("ParameterSizes() = %v after mutating a returned slice, want [2 3 4]", again)
	}
}

func TestTestModelEqualAndKey(t *testing.T) {
	l1 := mustTupleList(t, 1, []int{0, 1}, [][]int{{1, 0}})
	l1Same := mustTupleList(t, 1, []int{1, 0}, [][]int{{0, 1}})
	l1Other := mustTupleList(t, 1, []int{0, 1}, [][]int{{1, 1}})
	l2 := mustTupleList(t, 2, []int{2}, [][]int{{0}})

	newModel := func(strength int, sizes []int, forbidden, errorLists []*TupleList) *TestModel {
		t.Helper()
		m, err := NewTestModel(strength, sizes, forbidden, errorLists)
		if err != nil {
			t.Fatal(err)
		}
		return m
	}
	base := newModel(2, []int{2, 2, 3}, []*TupleList{l1}, []*TupleList{l2})

	same := newModel(2, []int{2, 2, 3}, []*TupleList{l1Same}, []*TupleList{l2})
	if !base.Equal(same) || base.Key() != same.Key() {
		t.Errorf("structurally equal models differ: %s vs %s", base, same)
	}

	tests := []struct {
		name  string
		other *TestModel
	}{
		{"strength", newModel(1, []int{2, 2, 3}, []*TupleList{l1}, []*TupleList{l2})},
		{"sizes", newModel(2, []int{2, 3, 3}, []*TupleList{l1}, []*TupleList{l2})},
		{"parameter count", newModel(2, []int{2, 2, 3, 2}, []*TupleList{l1}, []*TupleList{l2})},
		{"forbidden tuples", newModel(2, []int{2, 2, 3}, []*TupleList{l1Other}, []*TupleList{l2})},
		{"missing forbidden list", newModel(2, []int{2, 2, 3}, nil, []*TupleList{l2})},
		{"missing error list", newModel(2, []int{2, 2, 3}, []*TupleList{l1}, nil)},
		{"lists swapped", newModel(2, []int{2, 2, 3}, []*TupleList{l2}, []*TupleList{l1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if base.Equal(tt.other) || tt.other.Equal(base) {
				t.Errorf("Equal reported %s equal to %s", tt.other, base)
			}
			if base.Key() == tt.other.Key() {
				t.Errorf("Key() collides: %s", base.Key())
			}
		})
	}

	if base.Equal(nil) {
		t.Error("Equal(nil) = true")
	}
}

func TestTupleConstraintChecker(t *testing.T) {
	forbidden := mustTupleList(t, 1, []int{0, 1}, [][]int{{1, 1}})
	errList := mustTupleList(t, 2, []int{2}, [][]int{{0}})
	m, err := NewTestModel(1, []int{2, 2, 2}, []*TupleList{forbidden}, []*TupleList{errList})
	if err != nil {
		t.Fatal(err)
	}
	checker := NewTupleConstraintChecker(m)

	if checker.IsValid(NewCombination(1, 1, 1)) {
		t.Error("combination containing forbidden tuple reported valid")
	}
	if !checker.IsValid(NewCombination(1, NoValue, 1)) {
		t.Error("partial combination that does not determine the tuple reported invalid")
	}
	if !checker.IsValid(NewCombination(0, 1, 0)) {
		t.Error("error tuple must not make a combination invalid")
	}

	violations := checker.Violations(NewCombination(1, 1, 0))
	if len(violations) != 2 {
		t.Fatalf("Violations() = %v, want 2 constraints", violations)
	}
	if violations[0].Kind != ConstraintForbidden || violations[1].Kind != ConstraintError {
		t.Errorf("violation kinds = %s, %s", violations[0].Kind, violations[1].Kind)
	}
}
