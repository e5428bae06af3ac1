// Package searcher implements leaf search over a single partition.
//
// Two strategies share the Searcher contract:
//   - AsymmetricHash scores product-quantized datapoints through a
//     per-query lookup table (see the quantization package).
//   - Linear scores float datapoints exactly with a matrix product.
//
// Both feed one TopN per query. Searchers hold only read-only state after
// construction; the dense distance scratch is allocated per call.
package searcher
