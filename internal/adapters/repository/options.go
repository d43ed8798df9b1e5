package repository

import (
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// Option tunes a SQL repository
type Option func(*options)

type options struct {
	degraded ports.DegradedReadObserver
}

// WithDegradedReadObserver reports every list read that fell back to an
// empty result
func WithDegradedReadObserver(o ports.DegradedReadObserver) Option {
	return func(opts *options) {
		opts.degraded = o
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// degradedRead logs a swallowed list failure and reports it
func (o options) degradedRead(log *logger.Logger, entity, op string, err error) {
	log.LogDegradedRead(entity, op, err)
	if o.degraded != nil {
		o.degraded.ObserveDegradedRead(entity, op, err)
	}
}
