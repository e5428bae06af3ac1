// Package distance provides the distance measures understood by scanngo
// indexes and their float32 implementations.
//
// # Supported Measures
//
//   - DotProduct: negated inner product, so that smaller is closer
//   - SquaredL2: squared Euclidean distance
//
// The numeric values of Measure match the DistanceMeasure enum stored in an
// index's configuration.
//
// # Usage
//
//	fn, err := distance.Provider(distance.SquaredL2)
//	d := fn(a, b)
package distance
