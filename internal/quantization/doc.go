// Package quantization implements asymmetric hashing, the product
// quantization scheme used by UINT8 indexes.
//
// A Codebooks value holds, for every subspace, the centers a datapoint slice
// can be replaced with. The Indexer maps float datapoints to one code per
// subspace and back. The Querier turns float queries into lookup tables (one
// partial distance per subspace and center) that the simd package sums per
// encoded datapoint.
//
//	ah := cfg.Scann().AsymmetricHashing()
//	q, _ := quantization.NewQuerier(ah)
//	var info quantization.QueryInfo
//	_ = q.Process(queries, &info)
package quantization
