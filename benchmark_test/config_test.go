package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/scanngo"
	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/testutil"
)

// ============================================================================
// Benchmark Configuration
// ============================================================================

// Standard dimensions used across benchmarks for consistency.
const (
	dimSmall  = 64  // Fast CI benchmarks
	dimMedium = 256 // On-device text embeddings
)

// Standard dataset sizes.
const (
	sizeSmall  = 10_000 // Quick iteration
	sizeMedium = 50_000 // Default CI
)

// Seed for deterministic benchmarks - enables reproducible comparisons.
const benchSeed = 42

// ============================================================================
// Benchmark Helpers
// ============================================================================

// BenchIndex is a serialized index with the vectors it was trained on.
type BenchIndex struct {
	Buf     []byte
	Vectors [][]float32
}

// indexShape describes the index a benchmark searches.
type indexShape struct {
	n, dim     int
	partitions int
	fraction   float32
	// subspaces of 0 keeps the database in float.
	subspaces int
	lookup    indexconfig.LookupType
}

// BuildBenchIndex trains and serializes an index of the given shape.
func BuildBenchIndex(b *testing.B, shape indexShape) *BenchIndex {
	b.Helper()
	rng := testutil.NewRNG(benchSeed)
	vectors := rng.ClusteredVectors(shape.n, shape.dim, max(shape.partitions, 1), 0.2)

	a, err := testutil.Train(context.Background(), vectors, testutil.TrainOptions{
		NumPartitions:  shape.partitions,
		SearchFraction: shape.fraction,
		NumSubspaces:   shape.subspaces,
		NumCenters:     16,
		LookupType:     shape.lookup,
		Measure:        distance.SquaredL2,
		MaxIter:        10,
		Seed:           benchSeed,
	})
	if err != nil {
		b.Fatalf("failed to train index: %v", err)
	}
	buf, err := testutil.CreateIndexBuffer(a, false)
	if err != nil {
		b.Fatalf("failed to serialize index: %v", err)
	}
	return &BenchIndex{Buf: buf, Vectors: vectors}
}

// Open creates a searcher over the index.
func (x *BenchIndex) Open(b *testing.B, opts ...scanngo.Option) *scanngo.EmbeddingSearcher {
	b.Helper()
	s, err := scanngo.New(context.Background(), append([]scanngo.Option{scanngo.WithIndexContent(x.Buf)}, opts...)...)
	if err != nil {
		b.Fatalf("failed to open searcher: %v", err)
	}
	return s
}

// MakeQueries generates uniform random queries.
func MakeQueries(n, dim int) [][]float32 {
	return testutil.NewRNG(benchSeed+1).UniformVectors(n, dim)
}
