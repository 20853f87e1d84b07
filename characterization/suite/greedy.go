package suite

import (
	"math/rand"

	"github.com/example/faultchar/characterization/domain"
)

// maxFillAttempts bounds the random completions tried for one candidate.
const maxFillAttempts = 64

type generator struct {
	model   *domain.TestModel
	checker domain.ConstraintChecker
	rng     *rand.Rand

	// shapes lists every t-subset of parameter positions.
	shapes [][]int
}

func newGenerator(model *domain.TestModel, checker domain.ConstraintChecker, seed int64) *generator {
	var rng *rand.Rand
	if seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	} else {
		rng = rand.New(rand.NewSource(seed))
	}
	return &generator{
		model:   model,
		checker: checker,
		rng:     rng,
		shapes:  positionSubsets(model.NumParameters(), model.Strength()),
	}
}

// validTuples enumerates every t-way tuple the checker accepts.
func (g *generator) validTuples() *domain.CombinationSet {
	tuples := domain.NewCombinationSet()
	empty := domain.EmptyCombination(g.model.NumParameters())
	for _, shape := range g.shapes {
		var assign func(c domain.Combination, depth int)
		assign = func(c domain.Combination, depth int) {
			if depth == len(shape) {
				if g.checker.IsValid(c) {
					tuples.Add(c)
				}
				return
			}
			p := shape[depth]
			for v := 0; v < g.model.ParameterSize(p); v++ {
				assign(c.With(p, v), depth+1)
			}
		}
		assign(empty, 0)
	}
	return tuples
}

// tuplesOf returns the t-way tuples contained in a full combination.
func (g *generator) tuplesOf(c domain.Combination) []domain.Combination {
	out := make([]domain.Combination, len(g.shapes))
	for i, shape := range g.shapes {
		out[i] = c.Project(shape)
	}
	return out
}

// bestCompletion samples random valid completions of target and returns the
// one covering most uncovered tuples.
func (g *generator) bestCompletion(target domain.Combination, uncovered *domain.CombinationSet, candidates int) (domain.Combination, int) {
	var (
		best     domain.Combination
		bestGain int
	)
	for i := 0; i < candidates; i++ {
		c, ok := g.randomValid(target)
		if !ok {
			continue
		}
		gain := 0
		for _, tuple := range g.tuplesOf(c) {
			if uncovered.Contains(tuple) {
				gain++
			}
		}
		if gain > bestGain {
			best, bestGain = c, gain
		}
	}
	return best, bestGain
}

// randomValid fills the unassigned positions of partial with random values
// until the result is valid.
func (g *generator) randomValid(partial domain.Combination) (domain.Combination, bool) {
	for attempt := 0; attempt < maxFillAttempts; attempt++ {
		c := partial
		for p := 0; p < c.Len(); p++ {
			if !c.IsSet(p) {
				c = c.With(p, g.rng.Intn(g.model.ParameterSize(p)))
			}
		}
		if g.checker.IsValid(c) {
			return c, true
		}
	}
	return domain.Combination{}, false
}

// positionSubsets returns every k-subset of [0, n) in lexicographic order.
func positionSubsets(n, k int) [][]int {
	if k <= 0 || k > n {
		return nil
	}
	var out [][]int
	chosen := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			out = append(out, append([]int(nil), chosen...))
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			chosen[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}
