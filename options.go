package quantvec

import "log/slog"

type options struct {
	logger  *Logger
	limiter *Limiter
}

// Option configures Open behavior.
type Option func(*options)

// WithLogger configures structured logging for segment operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets
// it. Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithLimiter attaches a shared resource limiter. Segments opened with
// the same limiter count against one mapped-memory budget and share
// the warmup slots and IO budget.
func WithLimiter(l *Limiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger: NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
