package partition

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/container"
	"github.com/hupe1980/scanngo/internal/math32"
)

var (
	// ErrInvalidPartitioner is returned for leaf sets that cannot be searched.
	ErrInvalidPartitioner = errors.New("invalid partitioner")
	// ErrDimensionMismatch is returned when queries or token lists do not fit.
	ErrDimensionMismatch = errors.New("mismatching dimensions")
)

// Partitioner selects partitions for a batch of queries.
type Partitioner interface {
	// Partition fills tokens[j] with the len(tokens[j]) partitions closest to
	// column j of queries, in no particular order.
	Partition(queries math32.Matrix, tokens [][]int) error
	// NumPartitions returns the number of partitions available.
	NumPartitions() int
}

// Centroid partitions by distance to one centroid per leaf.
type Centroid struct {
	leaves  math32.Matrix
	norms   []float32
	measure distance.Measure
}

var _ Partitioner = (*Centroid)(nil)

// New creates a centroid partitioner from its config. The measure must be dot
// product or squared L2.
func New(proto *indexconfig.Partitioner) (*Centroid, error) {
	if proto == nil || len(proto.Leaf) == 0 {
		return nil, fmt.Errorf("%w: no leaves", ErrInvalidPartitioner)
	}
	switch proto.QueryDistance {
	case distance.DotProduct, distance.SquaredL2:
	default:
		return nil, fmt.Errorf("%w: unsupported distance measure %v", ErrInvalidPartitioner, proto.QueryDistance)
	}

	dims := len(proto.Leaf[0].Dimension)
	leaves := math32.NewMatrix(dims, len(proto.Leaf))
	for i, leaf := range proto.Leaf {
		if len(leaf.Dimension) != dims {
			return nil, fmt.Errorf("%w: leaf %d has %d dimensions but %d are expected",
				ErrInvalidPartitioner, i, len(leaf.Dimension), dims)
		}
		copy(leaves.Col(i), leaf.Dimension)
	}

	return &Centroid{
		leaves:  leaves,
		norms:   leaves.SquaredNorms(),
		measure: proto.QueryDistance,
	}, nil
}

// NumPartitions returns the number of leaves.
func (p *Centroid) NumPartitions() int { return p.leaves.Cols }

// Dims returns the dimensionality of the leaf centroids.
func (p *Centroid) Dims() int { return p.leaves.Rows }

// Measure returns the distance measure leaves are ranked by.
func (p *Centroid) Measure() distance.Measure { return p.measure }

// Partition ranks leaves by squared L2 distance (up to the query-only term)
// or negative dot product. Ties go to the lower leaf index.
func (p *Centroid) Partition(queries math32.Matrix, tokens [][]int) error {
	if queries.Cols != len(tokens) {
		return fmt.Errorf("%w: %d token lists for %d queries", ErrDimensionMismatch, len(tokens), queries.Cols)
	}
	if queries.Rows != p.leaves.Rows {
		return fmt.Errorf("%w: query has %d dimensions, %d expected", ErrDimensionMismatch, queries.Rows, p.leaves.Rows)
	}

	numLeaves := p.leaves.Cols
	for j, tok := range tokens {
		if len(tok) > numLeaves {
			return fmt.Errorf("%w: query %d asks for %d of %d partitions", ErrDimensionMismatch, j, len(tok), numLeaves)
		}
	}

	alpha := float32(-1)
	if p.measure == distance.SquaredL2 {
		alpha = -2
	}
	dist := make([]float32, numLeaves*queries.Cols)
	math32.InnerProducts(alpha, p.leaves, queries, dist)

	ranked := make([]scored, numLeaves)
	for j, tok := range tokens {
		n := len(tok)
		if n == 0 {
			continue
		}
		row := dist[j*numLeaves : (j+1)*numLeaves]
		for i, d := range row {
			if p.measure == distance.SquaredL2 {
				d += p.norms[i]
			}
			ranked[i] = scored{dist: d, leaf: i}
		}
		container.NthElement(ranked, n-1, lessScored)
		for i := range tok {
			tok[i] = ranked[i].leaf
		}
	}
	return nil
}

type scored struct {
	dist float32
	leaf int
}

func lessScored(a, b scored) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.leaf < b.leaf
}

// NoOp is the partitioner of an index without coarse clustering: every query
// searches partition 0.
type NoOp struct{}

var _ Partitioner = NoOp{}

// NumPartitions always returns 1.
func (NoOp) NumPartitions() int { return 1 }

// Partition requires exactly one token per query.
func (NoOp) Partition(queries math32.Matrix, tokens [][]int) error {
	if queries.Cols != len(tokens) {
		return fmt.Errorf("%w: %d token lists for %d queries", ErrDimensionMismatch, len(tokens), queries.Cols)
	}
	for j, tok := range tokens {
		if len(tok) != 1 {
			return fmt.Errorf("%w: query %d asks for %d partitions but only 1 exists", ErrDimensionMismatch, j, len(tok))
		}
		tok[0] = 0
	}
	return nil
}

// LeavesToSearch returns ceil(numPartitions*fraction) clamped to
// [0, numPartitions].
func LeavesToSearch(numPartitions int, fraction float32) int {
	n := int(math.Ceil(float64(float32(numPartitions) * fraction)))
	return min(max(n, 0), numPartitions)
}
