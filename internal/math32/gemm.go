package math32

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// rowMajor views a column-major matrix as its row-major transpose.
func rowMajor(m Matrix) blas32.General {
	return blas32.General{Rows: m.Cols, Cols: m.Rows, Stride: m.Rows, Data: m.Data}
}

// InnerProducts fills out with alpha * b.Col(j)·a.Col(i) laid out row by row
// per column of b: out[j*a.Cols+i]. Both matrices must share Rows and out must
// hold at least a.Cols*b.Cols values.
//
// For a database a and a query batch b, row j of out is query j's score
// against every datapoint, contiguous in memory.
func InnerProducts(alpha float32, a, b Matrix, out []float32) {
	if a.Cols == 0 || b.Cols == 0 {
		return
	}
	if a.Rows == 0 {
		clear(out[:a.Cols*b.Cols])
		return
	}
	c := blas32.General{Rows: b.Cols, Cols: a.Cols, Stride: a.Cols, Data: out}
	blas32.Gemm(blas.NoTrans, blas.Trans, alpha, rowMajor(b), rowMajor(a), 0, c)
}

// Block is a row-major window into a larger buffer.
type Block = blas32.General

// RowBlock returns the row-major window of rows x cols starting at data[0]
// whose consecutive rows are stride apart.
func RowBlock(rows, cols, stride int, data []float32) Block {
	return blas32.General{Rows: rows, Cols: cols, Stride: stride, Data: data}
}

// MulTransB computes c = alpha * a * bᵀ + beta * c on row-major blocks.
func MulTransB(alpha float32, a, b Block, beta float32, c Block) {
	if a.Rows == 0 || b.Rows == 0 || a.Cols == 0 {
		return
	}
	blas32.Gemm(blas.NoTrans, blas.Trans, alpha, a, b, beta, c)
}
