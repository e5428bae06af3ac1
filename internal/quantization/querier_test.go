package quantization

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/math32"
	"github.com/hupe1980/scanngo/internal/simd"
)

func TestNewQuerier(t *testing.T) {
	q, err := NewQuerier(exampleAH(distance.SquaredL2, indexconfig.LookupInt16))
	require.NoError(t, err)
	assert.Equal(t, 5, q.NumQueryDims())
	assert.Equal(t, 2, q.NumDatabaseDims())
	assert.Equal(t, 3, q.NumCenters())
	assert.Equal(t, indexconfig.LookupInt16, q.LookupType())

	_, err = NewQuerier(exampleAH(distance.SquaredL2, 7))
	assert.ErrorIs(t, err, ErrInvalidCodebook)

	_, err = NewQuerier(&indexconfig.AsymmetricHashing{})
	assert.ErrorIs(t, err, ErrInvalidCodebook)
}

func TestProcessFloatL2(t *testing.T) {
	q, err := NewQuerier(exampleAH(distance.SquaredL2, indexconfig.LookupFloat), WithPlan(simd.PlanFor(simd.Generic)))
	require.NoError(t, err)

	var info QueryInfo
	require.NoError(t, q.Process(columns(zeros(5), []float32{0, 0, 1, 1, 1}), &info))

	assert.Equal(t, 2, info.BatchSize)
	assert.Equal(t, 6, info.TableSize())
	assert.InDeltaSlice(t, []float32{
		0.05, 0.05, 1.45, 0.14, 0.14, 1.94,
		0.05, 0.05, 1.45, 4.34, 4.34, 9.74,
	}, info.LUT, 1e-5)
	// Width 1 only: the transposed table is a copy.
	assert.InDeltaSlice(t, info.LUT, info.TransposedLUT, 0)
}

func TestProcessFloatDot(t *testing.T) {
	q, err := NewQuerier(exampleAH(distance.DotProduct, indexconfig.LookupFloat))
	require.NoError(t, err)

	var info QueryInfo
	require.NoError(t, q.Process(columns(zeros(5), ones(5)), &info))
	assert.InDeltaSlice(t, []float32{
		0, 0, 0, 0, 0, 0,
		-0.3, -0.3, -1.7, 0.6, 0.6, 2.4,
	}, info.LUT, 1e-5)
}

func TestProcessFixedPoint(t *testing.T) {
	t.Run("Uint16", func(t *testing.T) {
		q, err := NewQuerier(exampleAH(distance.SquaredL2, indexconfig.LookupInt16))
		require.NoError(t, err)

		var info QueryInfo
		require.NoError(t, q.Process(columns(zeros(5), ones(5)), &info))
		assert.Equal(t, []uint16{0, 0, 295, 19, 19, 399, 295, 295, 0, 906, 906, 2047}, info.LUT16)
		assert.InDelta(t, 0.05, info.FixedPointMin, 1e-4)
		assert.InDelta(t, 9.74, info.FixedPointMax, 1e-4)
		assert.InDelta(t, 2047/9.69, info.FixedPointScale, 1e-2)
	})

	t.Run("Uint8", func(t *testing.T) {
		q, err := NewQuerier(exampleAH(distance.SquaredL2, indexconfig.LookupInt8))
		require.NoError(t, err)

		var info QueryInfo
		require.NoError(t, q.Process(columns(zeros(5), ones(5)), &info))
		assert.Equal(t, []uint8{0, 0, 36, 2, 2, 49, 36, 36, 0, 112, 112, 255}, info.LUT8)
		assert.InDelta(t, 0.05, info.FixedPointMin, 1e-4)
		assert.InDelta(t, 9.74, info.FixedPointMax, 1e-4)
	})
}

func TestProcessErrors(t *testing.T) {
	q, err := NewQuerier(exampleAH(distance.SquaredL2, indexconfig.LookupFloat))
	require.NoError(t, err)

	var info QueryInfo
	err = q.Process(columns(zeros(4)), &info)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	q, err = NewQuerier(exampleAH(distance.Unspecified, indexconfig.LookupFloat))
	require.NoError(t, err)
	err = q.Process(columns(zeros(5)), &info)
	assert.ErrorIs(t, err, ErrUnsupportedDistance)
}

func TestQueryInfoReuse(t *testing.T) {
	q, err := NewQuerier(exampleAH(distance.SquaredL2, indexconfig.LookupInt8))
	require.NoError(t, err)

	var info QueryInfo
	require.NoError(t, q.Process(columns(ones(5), ones(5), zeros(5)), &info))
	capacity := cap(info.LUT8)

	require.NoError(t, q.Process(columns(zeros(5)), &info))
	assert.Len(t, info.LUT8, 6)
	assert.Equal(t, capacity, cap(info.LUT8))
	assert.Equal(t, []uint8{0, 0, 188, 12, 12, 255}, info.LUT8)
}

// Table sums over the transposed table must match summing the float table.
func TestQueryInfoDistances(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	queries := math32.NewMatrix(5, 13)
	for i := range queries.Data {
		queries.Data[i] = rng.Float32()*2 - 1
	}
	const numDatapoints = 17
	codes := make([]byte, 2*numDatapoints)
	for i := range codes {
		codes[i] = byte(rng.Intn(3))
	}

	for _, isa := range []simd.ISA{simd.Generic, simd.SSE41, simd.AVX2} {
		for _, lookup := range []indexconfig.LookupType{indexconfig.LookupFloat, indexconfig.LookupInt16, indexconfig.LookupInt8} {
			q, err := NewQuerier(exampleAH(distance.SquaredL2, lookup), WithPlan(simd.PlanFor(isa)))
			require.NoError(t, err)

			var info QueryInfo
			require.NoError(t, q.Process(queries, &info))
			out := make([]float32, queries.Cols*numDatapoints)
			require.NoError(t, info.Distances(codes, numDatapoints, out))

			tol := 1e-4
			if lookup != indexconfig.LookupFloat {
				// One quantization step per subspace.
				tol = float64(2 * (info.FixedPointMax - info.FixedPointMin) / float32(lookupMax(lookup)))
			}
			for i := 0; i < numDatapoints; i++ {
				for j := 0; j < queries.Cols; j++ {
					want := info.LUT[j*6+int(codes[2*i])] + info.LUT[j*6+3+int(codes[2*i+1])]
					assert.InDelta(t, want, out[i*queries.Cols+j], tol, "isa=%s lookup=%s", isa, lookup)
				}
			}
		}
	}

	q, err := NewQuerier(exampleAH(distance.SquaredL2, indexconfig.LookupFloat))
	require.NoError(t, err)
	var info QueryInfo
	require.NoError(t, q.Process(queries, &info))
	out := make([]float32, queries.Cols*numDatapoints)
	assert.ErrorIs(t, info.Distances(codes[:3], numDatapoints, out), ErrDimensionMismatch)
	assert.ErrorIs(t, info.Distances(codes, numDatapoints, out[:5]), ErrDimensionMismatch)
}

func lookupMax(t indexconfig.LookupType) int {
	if t == indexconfig.LookupInt8 {
		return simd.MaxQuantizationValue[uint8]()
	}
	return simd.MaxQuantizationValue[uint16]()
}
