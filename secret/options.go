package secret

import (
	"io"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// DefaultRevalidateInterval bounds how stale a store-backed secret may get.
const DefaultRevalidateInterval = 30 * time.Second

// DefaultStoreTimeout bounds one acquisition or revalidation against the store.
const DefaultStoreTimeout = 5 * time.Second

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock replaces the clock used for revalidation timing.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithRandom replaces the entropy source used to generate secrets.
func WithRandom(r io.Reader) Option {
	return func(c *Coordinator) { c.random = r }
}

// WithSkipStore disables the coordination store. Secrets are then local to the process.
func WithSkipStore(skip bool) Option {
	return func(c *Coordinator) { c.skipStore = skip }
}

// WithMeterProvider sets the provider for acquisition metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Coordinator) { c.meterProvider = mp }
}

// WithStoreTimeout overrides DefaultStoreTimeout.
func WithStoreTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.storeTimeout = d
		}
	}
}

// WithRevalidateInterval overrides DefaultRevalidateInterval.
func WithRevalidateInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}
