package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies a block of a blob.
type Key struct {
	Path  string
	Block int64
}

// BlockCache is a cache for immutable blocks. Returned slices must be
// treated as read-only.
type BlockCache interface {
	Get(key Key) ([]byte, bool)
	Set(key Key, b []byte)
	// Invalidate removes every block of path.
	Invalidate(path string)
	Stats() (hits, misses int64)
}

// LRU is a BlockCache holding a fixed number of blocks.
type LRU struct {
	blocks *lru.Cache[Key, []byte]

	hits   atomic.Int64
	misses atomic.Int64
}

var _ BlockCache = (*LRU)(nil)

// NewLRU creates a cache of at most maxBlocks blocks.
func NewLRU(maxBlocks int) (*LRU, error) {
	blocks, err := lru.New[Key, []byte](maxBlocks)
	if err != nil {
		return nil, err
	}
	return &LRU{blocks: blocks}, nil
}

// Get returns a cached block.
func (c *LRU) Get(key Key) ([]byte, bool) {
	b, ok := c.blocks.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return b, ok
}

// Set caches a block, evicting the least recently used one when full.
func (c *LRU) Set(key Key, b []byte) {
	c.blocks.Add(key, b)
}

// Invalidate removes every block of path.
func (c *LRU) Invalidate(path string) {
	for _, k := range c.blocks.Keys() {
		if k.Path == path {
			c.blocks.Remove(k)
		}
	}
}

// Len returns the number of cached blocks.
func (c *LRU) Len() int { return c.blocks.Len() }

// Stats returns the hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
