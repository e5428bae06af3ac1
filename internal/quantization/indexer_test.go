package quantization

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/scanngo/distance"
	"github.com/hupe1980/scanngo/indexconfig"
)

func TestNewCodebooks(t *testing.T) {
	cb, err := NewCodebooks(exampleAH(distance.SquaredL2, indexconfig.LookupFloat))
	require.NoError(t, err)
	assert.Equal(t, 2, cb.NumSubspaces())
	assert.Equal(t, 3, cb.NumCenters())
	assert.Equal(t, 5, cb.Dims())
	assert.Equal(t, []float32{-0.3, -0.2, -0.1}, cb.Center(1, 1))

	tests := []struct {
		name  string
		proto *indexconfig.AsymmetricHashing
	}{
		{"Nil", nil},
		{"NoSubspaces", &indexconfig.AsymmetricHashing{}},
		{"NoCodes", &indexconfig.AsymmetricHashing{Subspace: []indexconfig.SubspaceCodebook{{}}}},
		{"RaggedCodes", &indexconfig.AsymmetricHashing{Subspace: []indexconfig.SubspaceCodebook{
			{Entry: []indexconfig.DatabasePoint{point(1), point(2)}},
			{Entry: []indexconfig.DatabasePoint{point(1)}},
		}}},
		{"RaggedDimensions", &indexconfig.AsymmetricHashing{Subspace: []indexconfig.SubspaceCodebook{
			{Entry: []indexconfig.DatabasePoint{point(1, 2), point(2)}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodebooks(tt.proto)
			assert.ErrorIs(t, err, ErrInvalidCodebook)
		})
	}
}

func TestEncodeDatapoint(t *testing.T) {
	tests := []struct {
		name    string
		measure distance.Measure
		input   []float32
		want    []byte
	}{
		{"L2Nearest", distance.SquaredL2, []float32{0.1, 0.2, -0.1, -0.2, -0.3}, []byte{0, 0}},
		{"L2Far", distance.SquaredL2, []float32{0.8, 0.7, -0.4, -0.2, -0.1}, []byte{2, 1}},
		{"DotProduct", distance.DotProduct, []float32{0.3, -0.1, -0.3, 0.5, 0.2}, []byte{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, err := NewIndexer(exampleAH(tt.measure, indexconfig.LookupFloat))
			require.NoError(t, err)

			encoded := make([]byte, 2)
			require.NoError(t, x.EncodeDatapoint(tt.input, encoded))
			assert.Equal(t, tt.want, encoded)
		})
	}
}

func TestEncodeDatapointDimensionMismatch(t *testing.T) {
	x, err := NewIndexer(exampleAH(distance.SquaredL2, indexconfig.LookupFloat))
	require.NoError(t, err)

	encoded := []byte{7, 7}
	err = x.EncodeDatapoint([]float32{0.1, 0.2}, encoded)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, []byte{7, 7}, encoded)

	err = x.EncodeDatapoint(make([]float32, 5), encoded[:1])
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestDecodeDatapoint(t *testing.T) {
	x, err := NewIndexer(exampleAH(distance.SquaredL2, indexconfig.LookupFloat))
	require.NoError(t, err)

	reconstructed := make([]float32, 5)
	require.NoError(t, x.DecodeDatapoint([]byte{2, 1}, reconstructed))
	assert.Equal(t, []float32{0.9, 0.8, -0.3, -0.2, -0.1}, reconstructed)

	err = x.DecodeDatapoint(nil, reconstructed)
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "mismatching dimensions")

	err = x.DecodeDatapoint([]byte{3, 0}, reconstructed)
	assert.ErrorIs(t, err, ErrInvalidCodebook)
}

func TestNewIndexerUnsupportedDistance(t *testing.T) {
	_, err := NewIndexer(exampleAH(distance.Unspecified, indexconfig.LookupFloat))
	assert.ErrorIs(t, err, ErrUnsupportedDistance)
}

// The chosen code of every subspace must be at least as close as any other.
func TestEncodeChoosesClosestCenter(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, measure := range []distance.Measure{distance.SquaredL2, distance.DotProduct} {
		x, err := NewIndexer(exampleAH(measure, indexconfig.LookupFloat))
		require.NoError(t, err)
		dist, err := distance.Provider(measure)
		require.NoError(t, err)
		cb := x.Codebooks()

		for range 200 {
			v := make([]float32, cb.Dims())
			for i := range v {
				v[i] = rng.Float32()*2 - 1
			}
			encoded := make([]byte, cb.NumSubspaces())
			require.NoError(t, x.EncodeDatapoint(v, encoded))

			reconstructed := make([]float32, cb.Dims())
			require.NoError(t, x.DecodeDatapoint(encoded, reconstructed))

			offset := 0
			for s := 0; s < cb.NumSubspaces(); s++ {
				dims := len(cb.Center(s, 0))
				slice := v[offset : offset+dims]
				assert.Equal(t, cb.Center(s, int(encoded[s])), reconstructed[offset:offset+dims])
				chosen := dist(slice, cb.Center(s, int(encoded[s])))
				for k := 0; k < cb.NumCenters(); k++ {
					assert.LessOrEqual(t, chosen, dist(slice, cb.Center(s, k)))
				}
				offset += dims
			}
		}
	}
}
