package quantization

import (
	"fmt"

	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/simd"
)

// QueryInfo is the scratch arena Process writes a query batch's lookup tables
// into. It is owned by the caller; buffers grow to the largest batch seen and
// are never shrunk, so one QueryInfo can be reused across calls. It must not
// be shared between concurrent searches.
type QueryInfo struct {
	// LUT is the float table: query j's entry for center k of subspace s is
	// LUT[j*NumSubspaces*NumCenters + s*NumCenters + k].
	LUT []float32
	// LUT16 and LUT8 hold LUT quantized to [0, MaxQuantizationValue] when the
	// lookup type asks for it.
	LUT16 []uint16
	LUT8  []uint8

	// Transposed tables are the active table rearranged for Plan.
	TransposedLUT   []float32
	TransposedLUT16 []uint16
	TransposedLUT8  []uint8

	LookupType   indexconfig.LookupType
	Plan         simd.Plan
	BatchSize    int
	NumSubspaces int
	NumCenters   int

	// Fixed-point parameters: LUT ≈ FixedPointMin + quantized / FixedPointScale.
	FixedPointMin   float32
	FixedPointMax   float32
	FixedPointScale float32
}

// TableSize returns the number of table entries per query.
func (info *QueryInfo) TableSize() int {
	return info.NumSubspaces * info.NumCenters
}

// Distances fills out with the approximate distance between every query of
// the batch and every one of numDatapoints encoded datapoints, using the
// transposed table of the active lookup type. codes holds NumSubspaces codes
// per datapoint; out receives BatchSize values per datapoint.
func (info *QueryInfo) Distances(codes []byte, numDatapoints int, out []float32) error {
	numChunks := info.NumSubspaces
	if len(codes) < numChunks*numDatapoints {
		return fmt.Errorf("%w: %d code bytes for %d datapoints of %d subspaces",
			ErrDimensionMismatch, len(codes), numDatapoints, numChunks)
	}
	if len(out) < info.BatchSize*numDatapoints {
		return fmt.Errorf("%w: output holds %d distances, need %d",
			ErrDimensionMismatch, len(out), info.BatchSize*numDatapoints)
	}

	switch info.LookupType {
	case indexconfig.LookupFloat:
		simd.IndexTableSum(codes, numChunks, numDatapoints, info.TransposedLUT, info.BatchSize,
			info.NumCenters, 0, 0, out, info.Plan)
	case indexconfig.LookupInt16:
		simd.IndexTableSum(codes, numChunks, numDatapoints, info.TransposedLUT16, info.BatchSize,
			info.NumCenters, info.FixedPointMin, info.FixedPointMax, out, info.Plan)
	case indexconfig.LookupInt8:
		simd.IndexTableSum(codes, numChunks, numDatapoints, info.TransposedLUT8, info.BatchSize,
			info.NumCenters, info.FixedPointMin, info.FixedPointMax, out, info.Plan)
	default:
		return fmt.Errorf("unsupported lookup type %v", info.LookupType)
	}
	return nil
}
