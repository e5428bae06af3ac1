package resource

import (
	"context"
	"errors"
	"io"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when a reservation would exceed the
// memory limit.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits. Zero values mean unlimited.
type Config struct {
	MaxConcurrentSearches int64
	IOLimitBytesPerSec    int64
	MemoryLimitBytes      int64
}

// Controller enforces a Config.
type Controller struct {
	cfg Config

	searchSem *semaphore.Weighted
	ioLimiter *rate.Limiter
	memSem    *semaphore.Weighted
	memUsed   atomic.Int64
}

// NewController creates a controller for cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}
	if cfg.MaxConcurrentSearches > 0 {
		c.searchSem = semaphore.NewWeighted(cfg.MaxConcurrentSearches)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	return c
}

// AcquireSearch blocks until a search slot is free or ctx is done.
func (c *Controller) AcquireSearch(ctx context.Context) error {
	if c == nil || c.searchSem == nil {
		return nil
	}
	return c.searchSem.Acquire(ctx, 1)
}

// ReleaseSearch frees a slot taken by AcquireSearch.
func (c *Controller) ReleaseSearch() {
	if c == nil || c.searchSem == nil {
		return
	}
	c.searchSem.Release(1)
}

// AcquireIO waits until n bytes may be read. Requests larger than the burst
// are split.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := c.ioLimiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// AcquireMemory reserves n bytes without blocking.
func (c *Controller) AcquireMemory(n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(n) {
		return ErrMemoryLimitExceeded
	}
	c.memUsed.Add(n)
	return nil
}

// ReleaseMemory returns n bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(n)
	}
	c.memUsed.Add(-n)
}

// MemoryUsage returns the reserved bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// Config returns the limits the controller enforces.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

type limitedReaderAt struct {
	ctx context.Context
	r   io.ReaderAt
	c   *Controller
}

// ReaderAt wraps r so every read first acquires IO budget.
func (c *Controller) ReaderAt(ctx context.Context, r io.ReaderAt) io.ReaderAt {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &limitedReaderAt{ctx: ctx, r: r, c: c}
}

func (l *limitedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if err := l.c.AcquireIO(l.ctx, len(p)); err != nil {
		return 0, err
	}
	return l.r.ReadAt(p, off)
}
