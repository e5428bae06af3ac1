package simd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allISAs = []ISA{Generic, SSE, SSE41, AVX, AVX2, NEON}

func TestParseISA(t *testing.T) {
	for _, isa := range allISAs {
		parsed, ok := ParseISA(isa.String())
		require.True(t, ok)
		assert.Equal(t, isa, parsed)
	}
	_, ok := ParseISA("avx512")
	assert.False(t, ok)
}

func TestWidths(t *testing.T) {
	p := PlanFor(AVX2)
	assert.Equal(t, []int{8, 4, 1}, Widths[float32](p))
	assert.Equal(t, []int{16, 8, 1}, Widths[uint16](p))
	assert.Equal(t, []int{16, 8, 1}, Widths[uint8](p))
	assert.Equal(t, []int{1}, Widths[uint8](PlanFor(Generic)))
}

func TestMaxQuantizationValue(t *testing.T) {
	assert.Equal(t, 255, MaxQuantizationValue[uint8]())
	assert.Equal(t, 2047, MaxQuantizationValue[uint16]())
	assert.Equal(t, 0, MaxQuantizationValue[float32]())
}

func TestRearrangeLUT(t *testing.T) {
	// 6 queries of 3 entries: with float widths {4} the first four queries are
	// transposed as a group and the last two copied.
	in := make([]float32, 18)
	for i := range in {
		in[i] = float32(i)
	}
	out := make([]float32, 18)
	RearrangeLUT(in, 3, 6, out, PlanFor(SSE))

	assert.Equal(t, []float32{
		0, 3, 6, 9,
		1, 4, 7, 10,
		2, 5, 8, 11,
		12, 13, 14, 15, 16, 17,
	}, out)

	RearrangeLUT(in, 3, 6, out, PlanFor(Generic))
	assert.Equal(t, in, out)
}

type tableSumCase struct {
	numChunks  int
	numCenters int
	numOutputs int
	batchSize  int
}

var tableSumCases = []tableSumCase{
	{numChunks: 1, numCenters: 3, numOutputs: 1, batchSize: 1},
	{numChunks: 5, numCenters: 16, numOutputs: 13, batchSize: 3},
	{numChunks: 40, numCenters: 16, numOutputs: 7, batchSize: 29},
	{numChunks: 33, numCenters: 256, numOutputs: 11, batchSize: 17},
	{numChunks: 300, numCenters: 16, numOutputs: 4, batchSize: 9},
}

func randomCodes(rng *rand.Rand, n, centers int) []byte {
	codes := make([]byte, n)
	for i := range codes {
		codes[i] = byte(rng.Intn(centers))
	}
	return codes
}

// naiveSum sums a query-major table without lane groups or blocks.
func naiveSum[T LUTValue](indices []byte, c tableSumCase, lut []T, value func(T) float32) []float32 {
	out := make([]float32, c.batchSize*c.numOutputs)
	stride := c.numChunks * c.numCenters
	for o := 0; o < c.numOutputs; o++ {
		for q := 0; q < c.batchSize; q++ {
			var sum float32
			for ch := 0; ch < c.numChunks; ch++ {
				sum += value(lut[q*stride+ch*c.numCenters+int(indices[o*c.numChunks+ch])])
			}
			out[o*c.batchSize+q] = sum
		}
	}
	return out
}

func runTableSum[T LUTValue](c tableSumCase, indices []byte, lut []T, lo, hi float32, isa ISA) []float32 {
	plan := PlanFor(isa)
	arranged := make([]T, len(lut))
	RearrangeLUT(lut, c.numChunks*c.numCenters, c.batchSize, arranged, plan)
	out := make([]float32, c.batchSize*c.numOutputs)
	for i := range out {
		out[i] = 42 // must be overwritten
	}
	IndexTableSum(indices, c.numChunks, c.numOutputs, arranged, c.batchSize, c.numCenters, lo, hi, out, plan)
	return out
}

func TestIndexTableSumFloat(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, c := range tableSumCases {
		indices := randomCodes(rng, c.numChunks*c.numOutputs, c.numCenters)
		lut := make([]float32, c.numChunks*c.numCenters*c.batchSize)
		for i := range lut {
			lut[i] = rng.Float32()
		}
		want := naiveSum(indices, c, lut, func(v float32) float32 { return v })

		reference := runTableSum(c, indices, lut, 0, 0, Generic)
		assert.InDeltaSlice(t, want, reference, 1e-3)

		for _, isa := range allISAs {
			got := runTableSum(c, indices, lut, 0, 0, isa)
			assert.InDeltaSlice(t, reference, got, 1e-4, "isa=%s case=%+v", isa, c)
		}
	}
}

func testIndexTableSumInt[T uint8 | uint16](t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	maxq := MaxQuantizationValue[T]()
	const lo, hi = float32(-1.5), float32(2.5)
	scale := (hi - lo) / float32(maxq)

	for _, c := range tableSumCases {
		indices := randomCodes(rng, c.numChunks*c.numOutputs, c.numCenters)
		lut := make([]T, c.numChunks*c.numCenters*c.batchSize)
		for i := range lut {
			lut[i] = T(rng.Intn(maxq + 1))
		}
		want := naiveSum(indices, c, lut, func(v T) float32 {
			return scale*float32(v) + lo + scale/2
		})

		reference := runTableSum(c, indices, lut, lo, hi, Generic)
		assert.InDeltaSlice(t, want, reference, 1e-2)

		for _, isa := range allISAs {
			got := runTableSum(c, indices, lut, lo, hi, isa)
			assert.InDeltaSlice(t, reference, got, 1e-4, "isa=%s case=%+v", isa, c)
		}
	}
}

func TestIndexTableSumUint16(t *testing.T) { testIndexTableSumInt[uint16](t) }

func TestIndexTableSumUint8(t *testing.T) { testIndexTableSumInt[uint8](t) }

func BenchmarkIndexTableSumUint8(b *testing.B) {
	c := tableSumCase{numChunks: 64, numCenters: 16, numOutputs: 1024, batchSize: 1}
	rng := rand.New(rand.NewSource(3))
	indices := randomCodes(rng, c.numChunks*c.numOutputs, c.numCenters)
	lut := make([]uint8, c.numChunks*c.numCenters)
	for i := range lut {
		lut[i] = uint8(rng.Intn(256))
	}
	out := make([]float32, c.numOutputs)
	plan := DefaultPlan()

	b.ResetTimer()
	for b.Loop() {
		IndexTableSum(indices, c.numChunks, c.numOutputs, lut, c.batchSize, c.numCenters, 0, 1, out, plan)
	}
}
