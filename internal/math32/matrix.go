// Package math32 provides the dense float32 matrix type shared by the
// partitioner, the querier and the linear searcher, plus BLAS-backed products.
package math32

import (
	"fmt"

	"github.com/viterin/vek/vek32"
)

// Matrix is a dense column-major float32 matrix: column j occupies
// Data[j*Rows : (j+1)*Rows]. Each column is one vector (a query, a centroid or
// a datapoint), so Rows is the vector dimensionality.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// MatrixFrom wraps data without copying.
func MatrixFrom(rows, cols int, data []float32) (Matrix, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return Matrix{}, fmt.Errorf("matrix %dx%d does not match %d values", rows, cols, len(data))
	}
	return Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

// Vector wraps a single vector as a one-column matrix.
func Vector(v []float32) Matrix {
	return Matrix{Rows: len(v), Cols: 1, Data: v}
}

// Col returns column j as a slice aliasing Data.
func (m Matrix) Col(j int) []float32 {
	return m.Data[j*m.Rows : (j+1)*m.Rows]
}

// At returns the element at row i, column j.
func (m Matrix) At(i, j int) float32 {
	return m.Data[j*m.Rows+i]
}

// ColRange returns columns [from, to) as a matrix aliasing Data.
func (m Matrix) ColRange(from, to int) Matrix {
	return Matrix{Rows: m.Rows, Cols: to - from, Data: m.Data[from*m.Rows : to*m.Rows]}
}

// SquaredNorms returns ||col||² for every column.
func (m Matrix) SquaredNorms() []float32 {
	norms := make([]float32, m.Cols)
	for j := range norms {
		col := m.Col(j)
		norms[j] = vek32.Dot(col, col)
	}
	return norms
}

// Grow resizes buf to n elements, reallocating only when its capacity is too
// small. The contents are not preserved across a reallocation.
func Grow[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
