// Package suite builds initial test suites that cover every t-way value
// combination of a model.
package suite

import (
	"fmt"

	"github.com/example/faultchar/characterization/domain"
)

// Builder constructs the initial test suite of a characterization session.
type Builder interface {
	// Build returns full combinations covering the model's t-way tuples that
	// checker accepts. A nil checker is derived from the model.
	Build(model *domain.TestModel, checker domain.ConstraintChecker) ([]domain.Combination, error)
}

// GreedyBuilder builds suites one row at a time. Each row is the best of a
// number of random completions of the first uncovered tuple.
type GreedyBuilder struct {
	seed       int64
	candidates int
}

// NewGreedyBuilder creates a builder. Seed 0 selects a random seed.
func NewGreedyBuilder(seed int64, candidates int) *GreedyBuilder {
	return &GreedyBuilder{seed: seed, candidates: candidates}
}

// NewBuilderFromConfig creates the builder configured for a session.
func NewBuilderFromConfig(config domain.SessionConfig) *GreedyBuilder {
	config = config.WithDefaults()
	return NewGreedyBuilder(config.SuiteSeed, config.SuiteCandidates)
}

// Build creates the suite.
func (b *GreedyBuilder) Build(model *domain.TestModel, checker domain.ConstraintChecker) ([]domain.Combination, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: model is required", domain.ErrInvalidArgument)
	}
	if b.candidates < 1 {
		return nil, fmt.Errorf("%w: candidates must be at least 1, got %d",
			domain.ErrInvalidConfig, b.candidates)
	}
	if checker == nil {
		checker = domain.NewTupleConstraintChecker(model)
	}

	g := newGenerator(model, checker, b.seed)
	if model.Strength() == 0 {
		c, ok := g.randomValid(domain.EmptyCombination(model.NumParameters()))
		if !ok {
			return nil, fmt.Errorf("%w: no valid combination found", domain.ErrInvalidModel)
		}
		return []domain.Combination{c}, nil
	}

	uncovered := g.validTuples()
	var rows []domain.Combination
	for uncovered.Len() > 0 {
		target := uncovered.Slice()[0]
		row, gain := g.bestCompletion(target, uncovered, b.candidates)
		if gain == 0 {
			// No valid full combination contains target.
			uncovered.Remove(target)
			continue
		}
		rows = append(rows, row)
		for _, tuple := range g.tuplesOf(row) {
			uncovered.Remove(tuple)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no valid combination found", domain.ErrInvalidModel)
	}
	return rows, nil
}
