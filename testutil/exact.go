package testutil

import (
	"cmp"
	"slices"

	"github.com/hupe1980/scanngo/distance"
)

// Neighbor is a ground-truth result.
type Neighbor struct {
	ID       int
	Distance float32
}

// ExactTopK scores every vector of dataset against query and returns the k
// best, ties broken by ID. It panics on unsupported measures.
func ExactTopK(query []float32, dataset [][]float32, k int, measure distance.Measure) []Neighbor {
	dist, err := distance.Provider(measure)
	if err != nil {
		panic(err)
	}

	results := make([]Neighbor, len(dataset))
	for i, v := range dataset {
		results[i] = Neighbor{ID: i, Distance: dist(query, v)}
	}
	slices.SortFunc(results, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return results[:min(k, len(results))]
}

// ComputeRecall returns the fraction of the ground-truth IDs found in
// approximate, over the first min(len) results.
func ComputeRecall(groundTruth []Neighbor, approximate []int) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))
	truthSet := make(map[int]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].ID] = struct{}{}
	}

	hits := 0
	for _, id := range approximate[:k] {
		if _, ok := truthSet[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}
