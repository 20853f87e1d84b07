package domain

import (
	"iter"
	"sort"
)

// CombinationSet is a set of combinations that remembers insertion order.
// Iteration and Slice return members in the order they were first added.
type CombinationSet struct {
	members map[Combination]uint64
	next    uint64
}

// NewCombinationSet creates a set holding the given combinations.
func NewCombinationSet(combinations ...Combination) *CombinationSet {
	s := &CombinationSet{members: make(map[Combination]uint64, len(combinations))}
	for _, c := range combinations {
		s.Add(c)
	}
	return s
}

// Add inserts c and returns true if it was not already present.
func (s *CombinationSet) Add(c Combination) bool {
	if _, ok := s.members[c]; ok {
		return false
	}
	s.members[c] = s.next
	s.next++
	return true
}

// Remove deletes c and returns true if it was present.
func (s *CombinationSet) Remove(c Combination) bool {
	if _, ok := s.members[c]; !ok {
		return false
	}
	delete(s.members, c)
	return true
}

// Contains returns true if c is a member.
func (s *CombinationSet) Contains(c Combination) bool {
	_, ok := s.members[c]
	return ok
}

// Len returns the number of members.
func (s *CombinationSet) Len() int {
	return len(s.members)
}

// Slice returns the members in insertion order.
func (s *CombinationSet) Slice() []Combination {
	out := make([]Combination, 0, len(s.members))
	for c := range s.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return s.members[out[i]] < s.members[out[j]]
	})
	return out
}

// All iterates over the members in insertion order.
func (s *CombinationSet) All() iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		for _, c := range s.Slice() {
			if !yield(c) {
				return
			}
		}
	}
}

// Clone returns an independent copy preserving insertion order.
func (s *CombinationSet) Clone() *CombinationSet {
	clone := &CombinationSet{
		members: make(map[Combination]uint64, len(s.members)),
		next:    s.next,
	}
	for c, seq := range s.members {
		clone.members[c] = seq
	}
	return clone
}

// Equal returns true if both sets hold the same members, regardless of order.
func (s *CombinationSet) Equal(other *CombinationSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for c := range s.members {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}
