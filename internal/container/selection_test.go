package container

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNthElement(t *testing.T) {
	less := func(a, b int) bool { return a < b }

	for _, size := range []int{1, 2, 5, 15, 16, 17, 100, 1000} {
		rng := rand.New(rand.NewSource(int64(size)))
		values := make([]int, size)
		for i := range values {
			values[i] = rng.Intn(size/2 + 1)
		}
		sorted := slices.Clone(values)
		slices.Sort(sorted)

		for _, n := range []int{0, size / 2, size - 1} {
			s := slices.Clone(values)
			NthElement(s, n, less)

			require.Equal(t, sorted[n], s[n], "size=%d n=%d", size, n)
			for i := 0; i < n; i++ {
				assert.LessOrEqual(t, s[i], s[n])
			}
			for i := n + 1; i < size; i++ {
				assert.GreaterOrEqual(t, s[i], s[n])
			}
		}
	}
}

func TestNthElementPairs(t *testing.T) {
	type pair struct {
		d float32
		i int
	}
	less := func(a, b pair) bool {
		if a.d != b.d {
			return a.d < b.d
		}
		return a.i < b.i
	}

	s := []pair{{0.5, 0}, {0.1, 1}, {0.5, 2}, {0.1, 3}, {0.9, 4}}
	NthElement(s, 1, less)

	got := []int{s[0].i, s[1].i}
	slices.Sort(got)
	assert.Equal(t, []int{1, 3}, got)
}
