package searcher

import (
	"fmt"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/internal/math32"
)

// Linear searches one partition of float datapoints exactly.
type Linear struct {
	database     math32.Matrix
	measure      distance.Measure
	globalOffset int
}

var _ Searcher = (*Linear)(nil)

// NewLinear creates a searcher over the columns of database, the first of
// which has global id globalOffset.
func NewLinear(database math32.Matrix, measure distance.Measure, globalOffset int) (*Linear, error) {
	if globalOffset < 0 {
		return nil, fmt.Errorf("%w: negative global offset %d", ErrInvalidSearcher, globalOffset)
	}
	return &Linear{database: database, measure: measure, globalOffset: globalOffset}, nil
}

// FindNeighbors scores every datapoint against every query. It fails for
// measures other than dot product and squared L2.
func (s *Linear) FindNeighbors(queries math32.Matrix, topn []*TopN) error {
	return FloatFindNeighbors(queries, s.database, s.globalOffset, s.measure, topn)
}
