package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkSize   = 8 << 20
	defaultConcurrency = 8
)

// IOLimiter throttles reads. *resource.Controller implements it.
type IOLimiter interface {
	AcquireIO(ctx context.Context, n int) error
}

type readAllOptions struct {
	chunkSize   int64
	concurrency int
	limiter     IOLimiter
}

// ReadAllOption configures ReadAll.
type ReadAllOption func(*readAllOptions)

// WithChunkSize sets the size of each ranged read.
func WithChunkSize(n int64) ReadAllOption {
	return func(o *readAllOptions) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithConcurrency sets how many ranged reads run at once.
func WithConcurrency(n int) ReadAllOption {
	return func(o *readAllOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithIOLimiter throttles each ranged read through l.
func WithIOLimiter(l IOLimiter) ReadAllOption {
	return func(o *readAllOptions) {
		o.limiter = l
	}
}

// Fetcher is implemented by blobs with a native whole-object download.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// ReadAll returns the full contents of b. Mappable blobs are copied and
// Fetchers download themselves; others are fetched with parallel ranged
// reads.
func ReadAll(ctx context.Context, b Blob, opts ...ReadAllOption) ([]byte, error) {
	o := readAllOptions{
		chunkSize:   defaultChunkSize,
		concurrency: defaultConcurrency,
	}
	for _, fn := range opts {
		fn(&o)
	}

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return append([]byte(nil), data...), nil
	}

	if f, ok := b.(Fetcher); ok {
		return f.Fetch(ctx)
	}

	size := b.Size()
	buf := make([]byte, size)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for off := int64(0); off < size; off += o.chunkSize {
		end := min(off+o.chunkSize, size)
		g.Go(func() error {
			chunk := buf[off:end]
			if o.limiter != nil {
				if err := o.limiter.AcquireIO(gctx, len(chunk)); err != nil {
					return err
				}
			}
			n, err := b.ReadAt(gctx, chunk, off)
			if err != nil && !(errors.Is(err, io.EOF) && n == len(chunk)) {
				return fmt.Errorf("read range %d-%d: %w", off, end, err)
			}
			if n != len(chunk) {
				return fmt.Errorf("read range %d-%d: %w", off, end, io.ErrUnexpectedEOF)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buf, nil
}
