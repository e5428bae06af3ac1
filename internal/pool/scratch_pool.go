// Package pool provides reusable per-search scratch space.
package pool

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/scanngo/internal/math32"
	"github.com/hupe1980/scanngo/internal/quantization"
)

const (
	// DefaultDistanceCapacity is the initial size of the distance buffer.
	DefaultDistanceCapacity = 4096

	// DefaultMaxPartitions is the initial capacity of the partition set.
	DefaultMaxPartitions = 1024

	// maxRetainedDistances caps the distance buffer a scratch keeps when it
	// goes back to the pool.
	maxRetainedDistances = 1 << 22
)

// Scratch holds the mutable state of one search call: the lookup tables, the
// dense query-by-datapoint distance matrix and the set of partitions visited.
// A Scratch must not be shared between concurrent searches.
type Scratch struct {
	Info       quantization.QueryInfo
	Partitions *bitset.BitSet

	distances []float32
	floats    []float32
}

var scratchPool = sync.Pool{
	New: func() any {
		return &Scratch{
			Partitions: bitset.New(DefaultMaxPartitions),
			distances:  make([]float32, 0, DefaultDistanceCapacity),
		}
	},
}

// Get retrieves a Scratch from the pool.
func Get() *Scratch {
	s := scratchPool.Get().(*Scratch)
	s.Reset()
	return s
}

// Put returns a Scratch to the pool for reuse.
func Put(s *Scratch) {
	if cap(s.distances) > maxRetainedDistances {
		s.distances = make([]float32, 0, DefaultDistanceCapacity)
	}
	if cap(s.floats) > maxRetainedDistances {
		s.floats = nil
	}
	scratchPool.Put(s)
}

// Reset clears the partition set. Buffers keep their capacity.
func (s *Scratch) Reset() {
	s.Partitions.ClearAll()
}

// Distances returns a buffer of n floats. Its contents are unspecified and
// it is only valid until the next call.
func (s *Scratch) Distances(n int) []float32 {
	s.distances = math32.Grow(s.distances, n)
	return s.distances
}

// Floats returns a second buffer of n floats, used to hold a decoded
// partition. It is only valid until the next call.
func (s *Scratch) Floats(n int) []float32 {
	s.floats = math32.Grow(s.floats, n)
	return s.floats
}

// MarkPartition records partition i as visited and reports whether it already
// was.
func (s *Scratch) MarkPartition(i int) bool {
	if s.Partitions.Test(uint(i)) {
		return true
	}
	s.Partitions.Set(uint(i))
	return false
}
