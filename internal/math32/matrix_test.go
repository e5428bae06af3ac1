package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixFrom(t *testing.T) {
	m, err := MatrixFrom(2, 3, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	assert.Equal(t, []float32{3, 4}, m.Col(1))
	assert.Equal(t, float32(6), m.At(1, 2))
	assert.Equal(t, []float32{5, 6}, m.ColRange(2, 3).Data)

	_, err = MatrixFrom(2, 2, []float32{1, 2, 3})
	assert.Error(t, err)
}

func TestSquaredNorms(t *testing.T) {
	m, err := MatrixFrom(2, 2, []float32{3, 4, 1, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{25, 1}, m.SquaredNorms(), 1e-6)
}

func TestInnerProducts(t *testing.T) {
	database, err := MatrixFrom(3, 2, []float32{1, 2, 3, 0, 1, 0})
	require.NoError(t, err)
	queries, err := MatrixFrom(3, 3, []float32{1, 1, 1, 0, 0, 2, -1, 0, 0})
	require.NoError(t, err)

	out := make([]float32, 6)
	InnerProducts(-1, database, queries, out)

	// Row per query, one column per datapoint.
	assert.InDeltaSlice(t, []float32{-6, -1, -6, 0, 1, 0}, out, 1e-6)
}

func TestMulTransBWindow(t *testing.T) {
	// Two queries of dim 4; multiply the slice [2:4) of each against two centers.
	queries := []float32{1, 1, 1, 2, 0, 0, 3, 1}
	centers := []float32{1, 0, 0, 1}
	out := make([]float32, 2*6)

	MulTransB(1, RowBlock(2, 2, 4, queries[2:]), RowBlock(2, 2, 2, centers), 0, RowBlock(2, 2, 6, out[2:]))

	assert.Equal(t, []float32{0, 0, 1, 2, 0, 0, 0, 0, 3, 1, 0, 0}, out)
}

func TestGrow(t *testing.T) {
	buf := make([]int, 4, 8)
	grown := Grow(buf, 6)
	assert.Len(t, grown, 6)
	assert.Equal(t, 8, cap(grown))

	grown = Grow(grown, 16)
	assert.Len(t, grown, 16)
}
