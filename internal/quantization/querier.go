package quantization

import (
	"fmt"
	"math"
	"slices"

	"github.com/viterin/vek/vek32"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/math32"
	"github.com/hupe1980/scanngo/internal/simd"
)

// float32Epsilon is the gap between 1 and the next float32.
const float32Epsilon = 1.1920929e-07

// QuerierOption configures a Querier.
type QuerierOption func(*Querier)

// WithPlan overrides the lane-width plan lookup tables are rearranged for.
func WithPlan(p simd.Plan) QuerierOption {
	return func(q *Querier) {
		q.plan = p
	}
}

// Querier builds per-query lookup tables against a set of codebooks. It holds
// only read-only state and may be shared by concurrent searches, each with its
// own QueryInfo.
type Querier struct {
	codebooks  *Codebooks
	measure    distance.Measure
	lookupType indexconfig.LookupType
	plan       simd.Plan
}

// NewQuerier creates a Querier from an asymmetric-hashing config.
func NewQuerier(proto *indexconfig.AsymmetricHashing, opts ...QuerierOption) (*Querier, error) {
	cb, err := NewCodebooks(proto)
	if err != nil {
		return nil, err
	}
	switch proto.LookupType {
	case indexconfig.LookupFloat, indexconfig.LookupInt8, indexconfig.LookupInt16:
	default:
		return nil, fmt.Errorf("%w: unknown lookup type %v", ErrInvalidCodebook, proto.LookupType)
	}

	q := &Querier{
		codebooks:  cb,
		measure:    proto.QueryDistance,
		lookupType: proto.LookupType,
		plan:       simd.DefaultPlan(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// NumQueryDims returns the dimensionality queries must have.
func (q *Querier) NumQueryDims() int { return q.codebooks.Dims() }

// NumDatabaseDims returns the number of code bytes per encoded datapoint.
func (q *Querier) NumDatabaseDims() int { return q.codebooks.NumSubspaces() }

// NumCenters returns the number of centers per subspace.
func (q *Querier) NumCenters() int { return q.codebooks.NumCenters() }

// LookupType returns the table type Process produces.
func (q *Querier) LookupType() indexconfig.LookupType { return q.lookupType }

// Process computes the lookup tables for a batch of queries, one per column,
// into info. For squared L2 an entry is ||c||² - 2c·q_s + ||q_s||², the full
// squared distance between center c and the query's slice q_s; for dot
// product it is -c·q_s.
func (q *Querier) Process(queries math32.Matrix, info *QueryInfo) error {
	cb := q.codebooks
	if queries.Rows != cb.Dims() {
		return fmt.Errorf("%w: query has %d dimensions, %d expected", ErrDimensionMismatch, queries.Rows, cb.Dims())
	}
	if q.measure != distance.SquaredL2 && q.measure != distance.DotProduct {
		return fmt.Errorf("%w: %v", ErrUnsupportedDistance, q.measure)
	}

	numQueries := queries.Cols
	k := cb.NumCenters()
	tableSize := k * cb.NumSubspaces()

	info.LookupType = q.lookupType
	info.Plan = q.plan
	info.BatchSize = numQueries
	info.NumSubspaces = cb.NumSubspaces()
	info.NumCenters = k
	info.LUT = math32.Grow(info.LUT, numQueries*tableSize)

	if numQueries > 0 {
		q.computeLUT(queries, info.LUT)
	}

	switch q.lookupType {
	case indexconfig.LookupFloat:
		info.TransposedLUT = math32.Grow(info.TransposedLUT, len(info.LUT))
		simd.RearrangeLUT(info.LUT, tableSize, numQueries, info.TransposedLUT, q.plan)
	case indexconfig.LookupInt16:
		info.LUT16 = math32.Grow(info.LUT16, len(info.LUT))
		info.TransposedLUT16 = math32.Grow(info.TransposedLUT16, len(info.LUT))
		convertToFixedPoint(info, info.LUT16)
		simd.RearrangeLUT(info.LUT16, tableSize, numQueries, info.TransposedLUT16, q.plan)
	case indexconfig.LookupInt8:
		info.LUT8 = math32.Grow(info.LUT8, len(info.LUT))
		info.TransposedLUT8 = math32.Grow(info.TransposedLUT8, len(info.LUT))
		convertToFixedPoint(info, info.LUT8)
		simd.RearrangeLUT(info.LUT8, tableSize, numQueries, info.TransposedLUT8, q.plan)
	}
	return nil
}

func (q *Querier) computeLUT(queries math32.Matrix, lut []float32) {
	cb := q.codebooks
	k := cb.NumCenters()
	tableSize := k * cb.NumSubspaces()
	numQueries := queries.Cols

	alpha := float32(-1)
	if q.measure == distance.SquaredL2 {
		alpha = -2
	}

	for s, dims := range cb.dims {
		off := cb.offsets[s]
		qs := math32.RowBlock(numQueries, dims, queries.Rows, queries.Data[off:])
		centers := math32.RowBlock(k, dims, dims, cb.centers[s])
		block := math32.RowBlock(numQueries, k, tableSize, lut[s*k:])
		math32.MulTransB(alpha, qs, centers, 0, block)

		if q.measure != distance.SquaredL2 {
			continue
		}
		norms := cb.norms[s]
		for j := 0; j < numQueries; j++ {
			slice := queries.Col(j)[off : off+dims]
			queryNorm := vek32.Dot(slice, slice)
			row := lut[j*tableSize+s*k : j*tableSize+(s+1)*k]
			for c := range row {
				row[c] += norms[c] + queryNorm
			}
		}
	}
}

// convertToFixedPoint quantizes info.LUT into dst, recording the range.
func convertToFixedPoint[T uint8 | uint16](info *QueryInfo, dst []T) {
	maxq := simd.MaxQuantizationValue[T]()
	if len(info.LUT) == 0 {
		info.FixedPointMin, info.FixedPointMax, info.FixedPointScale = 0, 0, float32(maxq)/float32Epsilon
		return
	}

	lo, hi := slices.Min(info.LUT), slices.Max(info.LUT)
	width := max(hi-lo, float32Epsilon)
	info.FixedPointMin = lo
	info.FixedPointMax = hi
	info.FixedPointScale = float32(maxq) / width

	// (v-lo)*maxq is exact in float64, so the top of the range maps to maxq.
	den := float64(width)
	for i, v := range info.LUT {
		x := math.Floor(float64(v-lo) * float64(maxq) / den)
		dst[i] = T(min(max(x, 0), float64(maxq)))
	}
}
