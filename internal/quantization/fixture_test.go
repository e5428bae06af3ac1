package quantization

import (
	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
	"github.com/hupe1980/scanngo/internal/math32"
)

func point(v ...float32) indexconfig.DatabasePoint {
	return indexconfig.DatabasePoint{Dimension: v}
}

// exampleAH has two subspaces of 2 and 3 dimensions with 3 centers each.
func exampleAH(measure distance.Measure, lookup indexconfig.LookupType) *indexconfig.AsymmetricHashing {
	return &indexconfig.AsymmetricHashing{
		Subspace: []indexconfig.SubspaceCodebook{
			{Entry: []indexconfig.DatabasePoint{point(0.1, 0.2), point(0.2, 0.1), point(0.9, 0.8)}},
			{Entry: []indexconfig.DatabasePoint{point(-0.1, -0.2, -0.3), point(-0.3, -0.2, -0.1), point(-0.9, -0.8, -0.7)}},
		},
		QueryDistance: measure,
		LookupType:    lookup,
	}
}

// columns builds a column-major matrix from one slice per column.
func columns(cols ...[]float32) math32.Matrix {
	m := math32.NewMatrix(len(cols[0]), len(cols))
	for j, c := range cols {
		copy(m.Col(j), c)
	}
	return m
}

func zeros(n int) []float32 { return make([]float32, n) }

func ones(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
