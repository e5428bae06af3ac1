package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/scanngo/internal/cache"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize matches the SSTable block size used by index writers.
const DefaultBlockSize = 4096

const maxParallelFetches = 16

// CachingStore adds a block cache in front of another store. Blobs are
// immutable, so cached blocks never go stale unless a name is reused; call
// Invalidate when that happens.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore wraps inner. blockSize defaults to DefaultBlockSize.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{inner: inner, cache: c, blockSize: blockSize}
}

// Open opens the blob in the inner store.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{inner: b, cache: s.cache, name: name, blockSize: s.blockSize}, nil
}

// Invalidate drops every cached block of name.
func (s *CachingStore) Invalidate(name string) {
	s.cache.Invalidate(name)
}

type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Close() error { return b.inner.Close() }

func (b *cachingBlob) Size() int64 { return b.inner.Size() }

func (b *cachingBlob) key(blk int64) cache.Key {
	return cache.Key{Path: b.name, Block: blk}
}

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size := b.Size()
	if off < 0 {
		return 0, errors.New("blobstore: negative offset")
	}
	if len(p) == 0 {
		return 0, nil
	}
	if off >= size {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), size)
	first := off / b.blockSize
	last := (end - 1) / b.blockSize

	blocks, err := b.blocks(ctx, first, last)
	if err != nil {
		return 0, err
	}

	n := 0
	for i, data := range blocks {
		start := (first + int64(i)) * b.blockSize
		lo := max(off, start) - start
		hi := min(end-start, int64(len(data)))
		if lo >= hi {
			break
		}
		n += copy(p[n:], data[lo:hi])
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// blocks returns blocks first..last, fetching each missing run with one
// request to the inner blob.
func (b *cachingBlob) blocks(ctx context.Context, first, last int64) ([][]byte, error) {
	out := make([][]byte, last-first+1)

	type run struct{ start, count int64 }
	var missing []run
	for blk := first; blk <= last; blk++ {
		if data, ok := b.cache.Get(b.key(blk)); ok {
			out[blk-first] = data
			continue
		}
		if k := len(missing) - 1; k >= 0 && missing[k].start+missing[k].count == blk {
			missing[k].count++
		} else {
			missing = append(missing, run{start: blk, count: 1})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)

	size := b.Size()
	for _, r := range missing {
		g.Go(func() error {
			start := r.start * b.blockSize
			end := min(start+r.count*b.blockSize, size)
			buf := make([]byte, end-start)
			n, err := b.inner.ReadAt(gctx, buf, start)
			if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
				return err
			}
			for i := range r.count {
				lo := i * b.blockSize
				if lo >= int64(n) {
					break
				}
				hi := min(lo+b.blockSize, int64(n))
				// Copy so the cache does not pin the whole run.
				blk := append([]byte(nil), buf[lo:hi]...)
				b.cache.Set(b.key(r.start+i), blk)
				out[r.start+i-first] = blk
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
