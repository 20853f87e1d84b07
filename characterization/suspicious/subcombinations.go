package suspicious

import (
	"github.com/example/faultchar/characterization/domain"
)

// SubCombinations returns every projection of c onto size of its assigned
// positions. Position subsets are enumerated in lexicographic order.
func SubCombinations(c domain.Combination, size int) []domain.Combination {
	assigned := c.AssignedPositions()
	if size <= 0 || size > len(assigned) {
		return nil
	}

	var out []domain.Combination
	chosen := make([]int, size)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == size {
			out = append(out, c.Project(chosen))
			return
		}
		for i := start; i <= len(assigned)-(size-depth); i++ {
			chosen[depth] = assigned[i]
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}

// AllSubCombinations returns every non-empty sub-combination of c, smallest
// first.
func AllSubCombinations(c domain.Combination) []domain.Combination {
	var out []domain.Combination
	for size := 1; size <= c.AssignedCount(); size++ {
		out = append(out, SubCombinations(c, size)...)
	}
	return out
}

// MinimalCombinations returns the members of combinations that contain no
// other member, keeping their order.
func MinimalCombinations(combinations []domain.Combination) []domain.Combination {
	var out []domain.Combination
	for _, c := range combinations {
		minimal := true
		for _, other := range combinations {
			if other != c && c.Contains(other) {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, c)
		}
	}
	return out
}
