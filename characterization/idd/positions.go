package idd

import "sort"

// union returns the sorted union of two sorted position lists.
func union(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// complement returns the positions in [0, n) not listed in sorted.
func complement(n int, sorted []int) []int {
	out := make([]int, 0, n)
	for p := 0; p < n; p++ {
		if !contains(sorted, p) {
			out = append(out, p)
		}
	}
	return out
}

// contains reports whether p is in the sorted list.
func contains(sorted []int, p int) bool {
	i := sort.SearchInts(sorted, p)
	return i < len(sorted) && sorted[i] == p
}
