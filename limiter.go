package quantvec

import "github.com/hupe1980/quantvec/internal/resource"

// ErrMemoryLimitExceeded is returned by Open when mapping a segment
// would exceed the limiter's mapped-memory limit.
var ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

// LimiterConfig holds the resource limits shared by a set of segment
// readers. Zero values mean unlimited, except MaxWarmers which
// defaults to 1.
type LimiterConfig struct {
	// MappedMemoryLimit caps the total bytes of open segment mappings.
	MappedMemoryLimit int64

	// MaxWarmers caps concurrent warmup jobs.
	MaxWarmers int64

	// WarmIOBytesPerSec throttles warmup read throughput.
	WarmIOBytesPerSec int64
}

// Limiter enforces shared resource limits across segment readers.
// Create one per process and pass it to Open via WithLimiter.
type Limiter struct {
	ctrl *resource.Controller
}

// NewLimiter creates a Limiter for the given limits.
func NewLimiter(cfg LimiterConfig) *Limiter {
	return &Limiter{ctrl: resource.NewController(resource.Config{
		MappedMemoryLimit: cfg.MappedMemoryLimit,
		MaxWarmers:        cfg.MaxWarmers,
		WarmIOBytesPerSec: cfg.WarmIOBytesPerSec,
	})}
}

// MappedBytes returns the bytes currently mapped under this limiter.
func (l *Limiter) MappedBytes() int64 {
	if l == nil {
		return 0
	}
	return l.ctrl.MappedBytes()
}

func (l *Limiter) controller() *resource.Controller {
	if l == nil {
		return nil
	}
	return l.ctrl
}
