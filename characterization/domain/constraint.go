package domain

// ConstraintKind tells a consumer how to interpret a constraint match.
type ConstraintKind int

const (
	// ConstraintForbidden tuples must never occur in a test input.
	ConstraintForbidden ConstraintKind = iota
	// ConstraintError tuples may occur and deliberately trigger an error path.
	ConstraintError
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintForbidden:
		return "FORBIDDEN"
	case ConstraintError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Constraint is a tuple list expanded to partial combinations over the full
// parameter range. Forbidden and error constraints match identically; only
// the Kind differs.
type Constraint struct {
	ID              int
	Kind            ConstraintKind
	Parameters      []int
	MarkedAsCorrect bool

	tuples []Combination
}

func newConstraints(kind ConstraintKind, lists []*TupleList, numParameters int) []Constraint {
	out := make([]Constraint, len(lists))
	for i, l := range lists {
		out[i] = Constraint{
			ID:              l.id,
			Kind:            kind,
			Parameters:      l.InvolvedParameters(),
			MarkedAsCorrect: l.markedAsCorrect,
			tuples:          l.combinations(numParameters),
		}
	}
	return out
}

// Tuples returns the constraint's tuples as partial combinations.
func (c Constraint) Tuples() []Combination {
	out := make([]Combination, len(c.tuples))
	copy(out, c.tuples)
	return out
}

// MatchedBy returns true if comb contains one of the constraint's tuples.
// Unassigned positions in comb never match, so a partial combination only
// matches tuples it fully determines.
func (c Constraint) MatchedBy(comb Combination) bool {
	for _, t := range c.tuples {
		if comb.Contains(t) {
			return true
		}
	}
	return false
}

// ConstraintChecker decides whether a (partial) combination is a valid test input.
type ConstraintChecker interface {
	// IsValid returns true if c matches no forbidden constraint.
	IsValid(c Combination) bool

	// Violations returns every constraint c matches, forbidden and error alike.
	Violations(c Combination) []Constraint
}

// TupleConstraintChecker checks combinations against a model's derived constraints.
type TupleConstraintChecker struct {
	forbidden []Constraint
	errors    []Constraint
}

// NewTupleConstraintChecker creates a checker for the given model.
func NewTupleConstraintChecker(model *TestModel) *TupleConstraintChecker {
	return &TupleConstraintChecker{
		forbidden: model.ForbiddenConstraints(),
		errors:    model.ErrorConstraints(),
	}
}

// IsValid implements ConstraintChecker.
func (c *TupleConstraintChecker) IsValid(comb Combination) bool {
	for _, cons := range c.forbidden {
		if cons.MatchedBy(comb) {
			return false
		}
	}
	return true
}

// Violations implements ConstraintChecker.
func (c *TupleConstraintChecker) Violations(comb Combination) []Constraint {
	var out []Constraint
	for _, cons := range c.forbidden {
		if cons.MatchedBy(comb) {
			out = append(out, cons)
		}
	}
	for _, cons := range c.errors {
		if cons.MatchedBy(comb) {
			out = append(out, cons)
		}
	}
	return out
}
