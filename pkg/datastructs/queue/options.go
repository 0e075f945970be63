package queue

import "go.uber.org/zap"

// Option configures a FairQueue built by New.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used for lifecycle events. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
