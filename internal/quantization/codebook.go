package quantization

import (
	"errors"
	"fmt"

	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/math32"
)

var (
	// ErrInvalidCodebook is returned for codebooks that cannot be searched.
	ErrInvalidCodebook = errors.New("invalid codebook")
	// ErrDimensionMismatch is returned when a vector does not fit the codebooks.
	ErrDimensionMismatch = errors.New("mismatching dimensions")
	// ErrUnsupportedDistance is returned for measures other than dot product
	// and squared L2.
	ErrUnsupportedDistance = errors.New("unsupported distance measure")
)

// Codebooks holds the centers of every subspace. Subspace s covers query
// dimensions [offset[s], offset[s]+dims[s]).
type Codebooks struct {
	numCenters int
	totalDims  int
	dims       []int
	offsets    []int
	// centers[s] is row-major numCenters x dims[s].
	centers [][]float32
	// norms[s][k] is ||centers[s][k]||².
	norms [][]float32
}

// NewCodebooks copies the codebooks out of an asymmetric-hashing config. All
// subspaces must have the same, non-zero number of centers, and every center of
// a subspace the same, non-zero dimensionality.
func NewCodebooks(proto *indexconfig.AsymmetricHashing) (*Codebooks, error) {
	if proto == nil || len(proto.Subspace) == 0 {
		return nil, fmt.Errorf("%w: number of subspaces cannot be 0", ErrInvalidCodebook)
	}
	numCenters := len(proto.Subspace[0].Entry)
	if numCenters == 0 {
		return nil, fmt.Errorf("%w: number of codes in a subspace cannot be 0", ErrInvalidCodebook)
	}
	if numCenters > 256 {
		return nil, fmt.Errorf("%w: %d codes do not fit a byte", ErrInvalidCodebook, numCenters)
	}

	cb := &Codebooks{
		numCenters: numCenters,
		dims:       make([]int, len(proto.Subspace)),
		offsets:    make([]int, len(proto.Subspace)),
		centers:    make([][]float32, len(proto.Subspace)),
		norms:      make([][]float32, len(proto.Subspace)),
	}
	for s, sub := range proto.Subspace {
		if len(sub.Entry) != numCenters {
			return nil, fmt.Errorf("%w: subspace %d has %d codes but %d are expected",
				ErrInvalidCodebook, s, len(sub.Entry), numCenters)
		}
		dims := len(sub.Entry[0].Dimension)
		if dims == 0 {
			return nil, fmt.Errorf("%w: subspace %d has no dimensions", ErrInvalidCodebook, s)
		}

		centers := make([]float32, 0, numCenters*dims)
		for k, entry := range sub.Entry {
			if len(entry.Dimension) != dims {
				return nil, fmt.Errorf("%w: subspace %d code %d has %d dimensions but %d are expected",
					ErrInvalidCodebook, s, k, len(entry.Dimension), dims)
			}
			centers = append(centers, entry.Dimension...)
		}

		cb.dims[s] = dims
		cb.offsets[s] = cb.totalDims
		cb.centers[s] = centers
		// Row-major k x d is column-major d x k: one center per column.
		cb.norms[s] = math32.Matrix{Rows: dims, Cols: numCenters, Data: centers}.SquaredNorms()
		cb.totalDims += dims
	}
	return cb, nil
}

// NumSubspaces returns the number of subspaces, which is also the number of
// code bytes per encoded datapoint.
func (cb *Codebooks) NumSubspaces() int { return len(cb.dims) }

// NumCenters returns the number of centers per subspace.
func (cb *Codebooks) NumCenters() int { return cb.numCenters }

// Dims returns the total dimensionality covered by all subspaces.
func (cb *Codebooks) Dims() int { return cb.totalDims }

// Center returns center k of subspace s.
func (cb *Codebooks) Center(s, k int) []float32 {
	d := cb.dims[s]
	return cb.centers[s][k*d : (k+1)*d]
}
