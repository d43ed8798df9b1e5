// Package memory holds the in-process records store. Each repository owns a
// seeded slice behind a mutex and hands out copies only.
package memory

import (
	"context"
	"math/rand/v2"
	"time"
)

// Latency is the artificial delay range applied before every operation.
// The zero value means no delay.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// wait sleeps for a random duration in [Min, Max] or until ctx ends.
func (l Latency) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.Max <= 0 {
		return nil
	}

	d := l.Min
	if span := l.Max - l.Min; span > 0 {
		d += rand.N(span + 1)
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option configures a memory repository
type Option func(*options)

type options struct {
	latency Latency
	now     func() time.Time
}

// WithLatency injects an artificial delay before each operation
func WithLatency(l Latency) Option {
	return func(o *options) { o.latency = l }
}

// WithClock overrides the time source used for createdAt/addedAt and expiry checks
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
