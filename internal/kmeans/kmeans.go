package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/viterin/vek/vek32"

	"github.com/hupe1980/scanngo/distance"
)

// ErrTooFewVectors is returned when there are fewer vectors than clusters.
var ErrTooFewVectors = errors.New("kmeans: fewer vectors than clusters")

// Train runs Lloyd's algorithm on n = len(vectors)/dim row-major vectors and
// returns k row-major centroids. Vectors are assigned by measure; centroids
// are the means of their members. rng seeds the initial centroids and
// re-seeds empty clusters.
func Train(ctx context.Context, vectors []float32, dim, k int, measure distance.Measure, maxIter int, rng *rand.Rand) ([]float32, error) {
	if dim <= 0 || k <= 0 || len(vectors)%dim != 0 {
		return nil, fmt.Errorf("kmeans: %d values do not form vectors of %d dimensions", len(vectors), dim)
	}
	n := len(vectors) / dim
	if n < k {
		return nil, fmt.Errorf("%w: %d vectors, %d clusters", ErrTooFewVectors, n, k)
	}
	dist, err := distance.Provider(measure)
	if err != nil {
		return nil, err
	}

	centroids := make([]float32, k*dim)
	for i, p := range rng.Perm(n)[:k] {
		copy(centroids[i*dim:(i+1)*dim], vectors[p*dim:(p+1)*dim])
	}

	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	counts := make([]int, k)
	sums := make([]float32, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		for i := 0; i < n; i++ {
			best := Assign(vectors[i*dim:(i+1)*dim], centroids, dim, dist)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		clear(sums)
		clear(counts)
		for i, c := range assignments {
			vek32.Add_Inplace(sums[c*dim:(c+1)*dim], vectors[i*dim:(i+1)*dim])
			counts[c]++
		}
		for j := 0; j < k; j++ {
			center := centroids[j*dim : (j+1)*dim]
			if counts[j] == 0 {
				p := rng.Intn(n)
				copy(center, vectors[p*dim:(p+1)*dim])
				continue
			}
			copy(center, sums[j*dim:(j+1)*dim])
			vek32.MulNumber_Inplace(center, 1/float32(counts[j]))
		}
	}
	return centroids, nil
}

// Assign returns the index of the centroid closest to vec.
func Assign(vec, centroids []float32, dim int, dist distance.Func) int {
	best, bestDist := 0, float32(math.MaxFloat32)
	for j := 0; j < len(centroids)/dim; j++ {
		if d := dist(vec, centroids[j*dim:(j+1)*dim]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}
