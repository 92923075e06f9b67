// Package resource bounds the resources a clustering run may use: concurrent
// restarts, scratch memory held by running restarts, and blob IO throughput.
package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrScratchLimitExceeded is returned when a single reservation is larger
// than the whole scratch budget and could never be satisfied.
var ErrScratchLimitExceeded = errors.New("resource: reservation exceeds scratch limit")

// Config holds resource limits.
type Config struct {
	// MaxWorkers is the maximum number of restarts running at the same time.
	// If 0, defaults to 1.
	MaxWorkers int64

	// ScratchLimitBytes is the hard limit for scratch memory held by running
	// restarts. If 0, usage is only tracked.
	ScratchLimitBytes int64

	// IOLimitBytesPerSec is the maximum throughput for blob reads and writes.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller hands out worker slots, scratch memory and IO budget.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	workers *semaphore.Weighted

	scratchSem  *semaphore.Weighted // nil if unlimited
	scratchUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}

	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxWorkers),
	}

	if cfg.ScratchLimitBytes > 0 {
		c.scratchSem = semaphore.NewWeighted(cfg.ScratchLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// MaxWorkers returns the configured number of worker slots.
func (c *Controller) MaxWorkers() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MaxWorkers
}

// AcquireWorker reserves a worker slot, blocking until one is free or ctx is done.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.workers.Acquire(ctx, 1)
}

// TryAcquireWorker reserves a worker slot without blocking.
func (c *Controller) TryAcquireWorker() bool {
	if c == nil {
		return true
	}
	return c.workers.TryAcquire(1)
}

// ReleaseWorker releases a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.workers.Release(1)
}

// AcquireScratch reserves scratch memory. With a hard limit configured this
// blocks until enough memory is released or ctx is done.
func (c *Controller) AcquireScratch(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.scratchSem != nil {
		if bytes > c.cfg.ScratchLimitBytes {
			return ErrScratchLimitExceeded
		}
		if err := c.scratchSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}

	c.scratchUsed.Add(bytes)
	return nil
}

// TryAcquireScratch reserves scratch memory without blocking.
func (c *Controller) TryAcquireScratch(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}

	if c.scratchSem != nil && !c.scratchSem.TryAcquire(bytes) {
		return false
	}

	c.scratchUsed.Add(bytes)
	return true
}

// ReleaseScratch releases reserved scratch memory.
func (c *Controller) ReleaseScratch(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.scratchSem != nil {
		c.scratchSem.Release(bytes)
	}
	c.scratchUsed.Add(-bytes)
}

// ScratchInUse returns the scratch memory currently reserved, in bytes.
func (c *Controller) ScratchInUse() int64 {
	if c == nil {
		return 0
	}
	return c.scratchUsed.Load()
}

// AcquireIO waits until the IO limit allows n more bytes.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.ioLimiter == nil || n <= 0 {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, n)
}

// ioChunk is the largest single transfer the limiter can grant.
func (c *Controller) ioChunk(n int) int {
	if c == nil || c.ioLimiter == nil {
		return n
	}
	if burst := c.ioLimiter.Burst(); n > burst {
		return burst
	}
	return n
}
