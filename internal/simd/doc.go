// Package simd provides the lane-parallel lookup-table kernels behind
// asymmetric-hashing search.
//
// # Width Plans
//
// A Plan lists the lane widths tried from widest to narrowest; width 1 always
// runs last and handles whatever queries are left. RearrangeLUT and
// IndexTableSum must be given the same Plan, since the rearranged table is laid
// out per lane group.
//
//   - avx2: float {8,4}, integer {16,8}
//   - avx: float {8,4}, integer {8}
//   - sse4.1 / neon: float {4}, integer {8}
//   - sse: float {4}
//   - generic: width 1 only
//
// Runtime CPU feature detection picks the default plan. Set SCANNGO_SIMD to
// one of the names above to force a narrower one.
//
// # Operations
//
//   - RearrangeLUT: transposes query-major lookup tables into lane groups
//   - IndexTableSum: sums per-subspace table entries for encoded datapoints,
//     dequantizing integer tables on store
package simd
