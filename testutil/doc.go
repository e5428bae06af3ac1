// Package testutil provides helpers for tests and benchmarks: seeded random
// vectors, exact ground truth, recall, and an index writer that produces the
// table format read by the index package.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.ClusteredVectors(1000, 32, 8, 0.1)
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactTopK(query, vecs, k, distance.SquaredL2)
//
// # Building an Index
//
//	artifacts, err := testutil.Train(ctx, vecs, testutil.TrainOptions{...})
//	buf, err := testutil.CreateIndexBuffer(artifacts, true)
package testutil
