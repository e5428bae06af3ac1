package searcher

import (
	"errors"
	"fmt"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/internal/math32"
	"github.com/hupe1980/scanngo/internal/pool"
	"github.com/hupe1980/scanngo/internal/quantization"
)

var (
	// ErrDimensionMismatch is returned when queries, datapoints and selectors
	// do not fit together.
	ErrDimensionMismatch = errors.New("mismatching dimensions")
	// ErrInvalidSearcher is returned by constructors for unusable parameters.
	ErrInvalidSearcher = errors.New("invalid searcher")
)

// Searcher finds the nearest datapoints of one partition for a batch of
// queries, one column each, offering them to topn[j] for query j.
type Searcher interface {
	FindNeighbors(queries math32.Matrix, topn []*TopN) error
}

// Preprocessor turns a batch of queries into lookup tables.
type Preprocessor interface {
	Process(queries math32.Matrix, info *quantization.QueryInfo) error
}

var _ Preprocessor = (*quantization.Querier)(nil)

// Codes is a partition of product-quantized datapoints: NumSubspaces code
// bytes per datapoint, datapoint after datapoint.
type Codes struct {
	NumSubspaces int
	Data         []byte
}

// NewCodes wraps data without copying. Its length must be a multiple of
// numSubspaces.
func NewCodes(numSubspaces int, data []byte) (Codes, error) {
	if numSubspaces <= 0 || len(data)%numSubspaces != 0 {
		return Codes{}, fmt.Errorf("%w: %d code bytes do not split into datapoints of %d subspaces",
			ErrDimensionMismatch, len(data), numSubspaces)
	}
	return Codes{NumSubspaces: numSubspaces, Data: data}, nil
}

// NumDatapoints returns the number of encoded datapoints.
func (c Codes) NumDatapoints() int {
	if c.NumSubspaces == 0 {
		return 0
	}
	return len(c.Data) / c.NumSubspaces
}

// AsymmetricHashFindNeighbors scores every datapoint of codes against the
// batch info was processed for and offers (distance, globalOffset+i) to the
// selector of each query. A nil selector skips its query.
func AsymmetricHashFindNeighbors(info *quantization.QueryInfo, codes Codes, globalOffset int, topn []*TopN) error {
	if len(topn) != info.BatchSize {
		return fmt.Errorf("%w: %d selectors for %d queries", ErrDimensionMismatch, len(topn), info.BatchSize)
	}
	if codes.NumSubspaces != info.NumSubspaces {
		return fmt.Errorf("%w: datapoints have %d codes, lookup tables %d subspaces",
			ErrDimensionMismatch, codes.NumSubspaces, info.NumSubspaces)
	}

	n := codes.NumDatapoints()
	batch := info.BatchSize
	scratch := pool.Get()
	defer pool.Put(scratch)

	out := scratch.Distances(batch * n)
	if err := info.Distances(codes.Data, n, out); err != nil {
		return err
	}
	emplaceAll(out, n, batch, globalOffset, topn)
	return nil
}

// FloatFindNeighbors scores the float database exactly against queries and
// offers (distance, globalOffset+i) to the selector of each query. A nil
// selector skips its query.
func FloatFindNeighbors(queries, database math32.Matrix, globalOffset int, measure distance.Measure, topn []*TopN) error {
	if len(topn) != queries.Cols {
		return fmt.Errorf("%w: %d selectors for %d queries", ErrDimensionMismatch, len(topn), queries.Cols)
	}
	if queries.Rows != database.Rows {
		return fmt.Errorf("%w: query has %d dimensions, database %d",
			ErrDimensionMismatch, queries.Rows, database.Rows)
	}

	var alpha float32
	switch measure {
	case distance.SquaredL2:
		alpha = -2
	case distance.DotProduct:
		alpha = -1
	default:
		return fmt.Errorf("%w: %v", distance.ErrUnsupported, measure)
	}

	n := database.Cols
	batch := queries.Cols
	scratch := pool.Get()
	defer pool.Put(scratch)

	// Row j holds query j against every datapoint.
	pairwise := scratch.Distances(batch * n)
	math32.InnerProducts(alpha, database, queries, pairwise)
	if measure == distance.SquaredL2 {
		dbNorms := database.SquaredNorms()
		queryNorms := queries.SquaredNorms()
		for j := 0; j < batch; j++ {
			row := pairwise[j*n : (j+1)*n]
			for i := range row {
				row[i] += queryNorms[j] + dbNorms[i]
			}
		}
	}

	for i := 0; i < n; i++ {
		for j, t := range topn {
			if t != nil {
				t.Emplace(pairwise[j*n+i], i+globalOffset)
			}
		}
	}
	return nil
}

// emplaceAll offers a datapoint-major distance matrix: out[i*batch+j].
func emplaceAll(out []float32, n, batch, globalOffset int, topn []*TopN) {
	for i := 0; i < n; i++ {
		row := out[i*batch : (i+1)*batch]
		for j, t := range topn {
			if t != nil {
				t.Emplace(row[j], i+globalOffset)
			}
		}
	}
}
