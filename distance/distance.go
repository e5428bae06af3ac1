package distance

import (
	"errors"
	"fmt"

	"github.com/viterin/vek/vek32"
)

// Measure identifies how distances between a query and datapoints are computed.
type Measure int32

const (
	// Unspecified means the configuration did not name a measure.
	Unspecified Measure = 0
	// DotProduct ranks by -<q, x>.
	DotProduct Measure = 1
	// SquaredL2 ranks by ||q - x||².
	SquaredL2 Measure = 2
)

func (m Measure) String() string {
	switch m {
	case Unspecified:
		return "UNSPECIFIED"
	case DotProduct:
		return "DOT_PRODUCT"
	case SquaredL2:
		return "SQUARED_L2_DISTANCE"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(m))
	}
}

// Valid reports whether m is a measure searches can be run with.
func (m Measure) Valid() bool {
	return m == DotProduct || m == SquaredL2
}

// Dot calculates the dot product of two vectors.
// Vectors must have the same length.
func Dot(a, b []float32) float32 {
	return vek32.Dot(a, b)
}

// NegativeDot returns -<a, b>.
func NegativeDot(a, b []float32) float32 {
	return -vek32.Dot(a, b)
}

// SquaredL2Distance calculates ||a - b||².
// Vectors must have the same length.
func SquaredL2Distance(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	diff := vek32.Sub(a, b)
	return vek32.Dot(diff, diff)
}

// ErrUnsupported is returned for measures that cannot be computed.
var ErrUnsupported = errors.New("unsupported distance measure")

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given measure.
func Provider(m Measure) (Func, error) {
	switch m {
	case SquaredL2:
		return SquaredL2Distance, nil
	case DotProduct:
		return NegativeDot, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, m)
	}
}
