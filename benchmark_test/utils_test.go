package benchmark_test

import (
	"strconv"

	"github.com/hupe1980/scanngo"
	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/testutil"
)

func recallAtK(res *scanngo.SearchResult, data [][]float32, q []float32, k int) float64 {
	truth := testutil.ExactTopK(q, data, k, distance.SquaredL2)
	ids := make([]int, 0, len(res.Neighbors))
	for _, n := range res.Neighbors {
		id, err := strconv.Atoi(string(n.Metadata))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return testutil.ComputeRecall(truth, ids)
}
