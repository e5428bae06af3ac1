package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)

	c.Set(Key{Path: "a", Block: 0}, []byte{1})
	c.Set(Key{Path: "a", Block: 1}, []byte{2})

	b, ok := c.Get(Key{Path: "a", Block: 0})
	require.True(t, ok)
	assert.Equal(t, []byte{1}, b)

	// Block 1 is now the least recently used.
	c.Set(Key{Path: "b", Block: 0}, []byte{3})
	_, ok = c.Get(Key{Path: "a", Block: 1})
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUInvalidate(t *testing.T) {
	c, err := NewLRU(8)
	require.NoError(t, err)

	for i := range int64(3) {
		c.Set(Key{Path: "a", Block: i}, nil)
	}
	c.Set(Key{Path: "b", Block: 0}, nil)

	c.Invalidate("a")
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(Key{Path: "b", Block: 0})
	assert.True(t, ok)
}

func TestNewLRUInvalidSize(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)
}
