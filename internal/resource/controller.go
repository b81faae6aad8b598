// Package resource accounts for the off-heap memory of open segment
// mappings and throttles segment warmup, so that opening readers over
// many large vector files cannot exhaust the host.
package resource

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when reserving mapped bytes would
// exceed the configured limit.
var ErrMemoryLimitExceeded = errors.New("resource: mapped memory limit exceeded")

// Config holds the limits enforced by a Controller. Zero values mean
// unlimited, except MaxWarmers which defaults to 1.
type Config struct {
	// MappedMemoryLimit caps the total bytes of open segment mappings.
	// If 0, usage is tracked but not limited.
	MappedMemoryLimit int64

	// MaxWarmers caps concurrent segment warmup jobs.
	MaxWarmers int64

	// WarmIOBytesPerSec throttles the read throughput of warmup scans
	// so they do not starve foreground searches.
	WarmIOBytesPerSec int64
}

// Controller enforces the limits in Config. The zero-value *Controller
// (nil) is valid and enforces nothing.
type Controller struct {
	cfg Config

	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	warmSem *semaphore.Weighted

	ioLimiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxWarmers <= 0 {
		cfg.MaxWarmers = 1
	}

	c := &Controller{
		cfg:     cfg,
		warmSem: semaphore.NewWeighted(cfg.MaxWarmers),
	}
	if cfg.MappedMemoryLimit > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MappedMemoryLimit)
	}
	if cfg.WarmIOBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.WarmIOBytesPerSec), int(cfg.WarmIOBytesPerSec))
	}
	return c
}

// Reserve records bytes of newly mapped memory. Non-blocking: opening
// a segment should fail fast rather than wait for another to close.
func (c *Controller) Reserve(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}
	c.memUsed.Add(bytes)
	return nil
}

// Release returns bytes reserved by Reserve.
func (c *Controller) Release(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MappedBytes returns the currently reserved mapping bytes.
func (c *Controller) MappedBytes() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MappedMemoryLimit returns the configured limit, 0 if unlimited.
func (c *Controller) MappedMemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MappedMemoryLimit
}

// AcquireWarmer blocks until a warmup slot is free.
func (c *Controller) AcquireWarmer(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.warmSem.Acquire(ctx, 1)
}

// TryAcquireWarmer reserves a warmup slot without blocking.
func (c *Controller) TryAcquireWarmer() bool {
	if c == nil {
		return true
	}
	return c.warmSem.TryAcquire(1)
}

// ReleaseWarmer returns a warmup slot.
func (c *Controller) ReleaseWarmer() {
	if c == nil {
		return
	}
	c.warmSem.Release(1)
}

// WaitIO blocks until the warmup IO budget allows bytes more.
func (c *Controller) WaitIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// AllowIO reports whether bytes fit in the budget right now.
func (c *Controller) AllowIO(bytes int) bool {
	if c == nil || c.ioLimiter == nil {
		return true
	}
	return c.ioLimiter.AllowN(time.Now(), bytes)
}
