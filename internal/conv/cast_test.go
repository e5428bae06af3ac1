//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	for _, v := range []int{0, 17, math.MaxUint32} {
		got, err := IntToUint32(v)
		require.NoError(t, err)
		assert.Equal(t, uint32(v), got)
	}

	for _, v := range []int{-1, math.MaxUint32 + 1} {
		_, err := IntToUint32(v)
		assert.ErrorIs(t, err, ErrOverflow, "%d", v)
	}
}

func TestUint32ToInt(t *testing.T) {
	got, err := Uint32ToInt(math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, math.MaxUint32, got)
}
