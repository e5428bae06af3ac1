// Package container implements selection helpers over slices.
package container

// NthElement partially orders s so that s[n] holds the element that would be
// there if s were sorted by less, every element before it is not greater and
// every element after it is not less. The order inside each side is
// unspecified. n must be in [0, len(s)).
func NthElement[T any](s []T, n int, less func(a, b T) bool) {
	lo, hi := 0, len(s)-1
	for hi > lo {
		if hi-lo < 16 {
			insertionSort(s[lo:hi+1], less)
			return
		}

		p := partition(s, lo, hi, less)
		switch {
		case n == p:
			return
		case n < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

// partition places a median-of-three pivot at its final position and returns it.
func partition[T any](s []T, lo, hi int, less func(a, b T) bool) int {
	mid := lo + (hi-lo)/2
	if less(s[mid], s[lo]) {
		s[mid], s[lo] = s[lo], s[mid]
	}
	if less(s[hi], s[lo]) {
		s[hi], s[lo] = s[lo], s[hi]
	}
	if less(s[hi], s[mid]) {
		s[hi], s[mid] = s[mid], s[hi]
	}
	// s[lo] <= s[mid] <= s[hi]; park the pivot next to hi.
	s[mid], s[hi-1] = s[hi-1], s[mid]
	pivot := s[hi-1]

	i, j := lo, hi-1
	for {
		for i++; less(s[i], pivot); i++ {
		}
		for j--; less(pivot, s[j]); j-- {
		}
		if i >= j {
			break
		}
		s[i], s[j] = s[j], s[i]
	}
	s[i], s[hi-1] = s[hi-1], s[i]
	return i
}

func insertionSort[T any](s []T, less func(a, b T) bool) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
