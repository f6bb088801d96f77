package secret

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/logger"
)

// State is the lifecycle state of the secret slot.
type State int

const (
	// Uninitialized means no secret has been acquired yet.
	Uninitialized State = iota
	// LocalTrusted means the secret came from configuration or was generated
	// locally. It is never revalidated.
	LocalTrusted
	// CacheBacked means the secret was adopted from, or seeded into, the
	// coordination store and is revalidated periodically.
	CacheBacked
)

func (s State) String() string {
	switch s {
	case LocalTrusted:
		return "local_trusted"
	case CacheBacked:
		return "cache_backed"
	default:
		return "uninitialized"
	}
}

// SettingsSource resolves configuration values.
type SettingsSource interface {
	Get(key string) config.Value
}

// Coordinator owns the secret slot. It is safe for concurrent use.
type Coordinator struct {
	settings SettingsSource
	store    cache.Store
	log      logger.Logger

	now           func() time.Time
	random        io.Reader
	skipStore     bool
	interval      time.Duration
	storeTimeout  time.Duration
	meterProvider metric.MeterProvider
	metrics       *instruments

	group singleflight.Group

	mu        sync.Mutex
	state     State
	value     string
	checkedAt time.Time
}

// NewCoordinator returns a Coordinator reading secret_key_base from settings and
// sharing the secret through store. A nil store behaves like WithSkipStore(true).
func NewCoordinator(settings SettingsSource, store cache.Store, log logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		settings:     settings,
		store:        store,
		log:          log,
		now:          time.Now,
		interval:     DefaultRevalidateInterval,
		storeTimeout: DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	c.log = c.log.Named("secret")
	if c.meterProvider == nil {
		c.meterProvider = otel.GetMeterProvider()
	}
	if c.store == nil {
		c.skipStore = true
	}
	c.metrics = newInstruments(c.meterProvider)
	return c
}

// State returns the current state of the secret slot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset forgets the secret so the next call acquires it again.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Uninitialized
	c.value = ""
	c.checkedAt = time.Time{}
}

// SecretKeyBase returns the application secret. It never fails: store errors
// degrade to a process-local secret and are only logged.
func (c *Coordinator) SecretKeyBase(ctx context.Context) string {
	c.mu.Lock()
	state, value, checkedAt := c.state, c.value, c.checkedAt
	c.mu.Unlock()

	switch state {
	case LocalTrusted:
		return value
	case CacheBacked:
		if c.now().Sub(checkedAt) > c.interval {
			_, _, _ = c.group.Do("revalidate", func() (any, error) {
				storeCtx, cancel := c.storeContext(ctx)
				defer cancel()
				c.revalidate(storeCtx)
				return nil, nil
			})
		}
		return value
	}

	result, _, _ := c.group.Do("acquire", func() (any, error) {
		storeCtx, cancel := c.storeContext(ctx)
		defer cancel()
		return c.acquire(storeCtx), nil
	})
	return result.(string)
}

// storeContext detaches the store round-trips from the caller's cancellation.
// The outcome is shared by every waiter and kept for the life of the process,
// so one aborted caller must not decide it.
func (c *Coordinator) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), c.storeTimeout)
}

// acquire fills the empty slot and returns its value.
func (c *Coordinator) acquire(ctx context.Context) string {
	c.mu.Lock()
	if c.state != Uninitialized {
		value := c.value
		c.mu.Unlock()
		return value
	}
	c.mu.Unlock()

	configured := c.settings.Get(config.KeySecretKeyBase)
	if configured.Present() && Valid(configured.String()) {
		return c.adopt(ctx, LocalTrusted, configured.String(), SourceConfig)
	}
	invalid := configured.Present()

	var (
		value  string
		state  State
		source string
	)
	if c.skipStore {
		value, state, source = c.generate(), LocalTrusted, SourceGenerated
	} else {
		value, state, source = c.fromStore(ctx)
	}

	if invalid {
		c.log.Warn().
			Str("source", source).
			Int("length", len(configured.String())).
			Msg("Configured secret_key_base is not 128 lowercase hex characters, ignoring it")
	}
	return c.adopt(ctx, state, value, source)
}

// fromStore adopts the stored secret or seeds the store with a fresh one. Any
// store failure falls back to a local secret.
func (c *Coordinator) fromStore(ctx context.Context) (string, State, string) {
	stored, err := c.store.Get(ctx, StoreName)
	switch {
	case err == nil && Valid(stored):
		return stored, CacheBacked, SourceStore
	case err == nil:
		c.log.Warn().Str("name", StoreName).Msg("Stored secret is malformed, replacing it")
	case !errors.Is(err, cache.ErrNotFound):
		c.logStoreFailure(err, "read")
		return c.generate(), LocalTrusted, SourceFallback
	}

	fresh := c.generate()
	if err := c.store.Set(ctx, StoreName, fresh); err != nil {
		c.logStoreFailure(err, "seed")
		return fresh, LocalTrusted, SourceFallback
	}
	return fresh, CacheBacked, SourceGenerated
}

func (c *Coordinator) logStoreFailure(err error, op string) {
	event := c.log.Error()
	if cache.IsUnavailable(err) {
		event = c.log.Warn()
	}
	event.Err(err).Str("operation", op).Msg("Coordination store failed, using a process-local secret")
}

func (c *Coordinator) adopt(ctx context.Context, state State, value, source string) string {
	c.mu.Lock()
	c.state = state
	c.value = value
	c.checkedAt = c.now()
	c.mu.Unlock()

	c.metrics.acquired(ctx, source)
	c.log.Debug().Str("source", source).Str("state", state.String()).Msg("Secret acquired")
	return value
}

// revalidate re-reads the store and re-seeds it when the secret is gone. The
// in-memory value is kept in every case.
func (c *Coordinator) revalidate(ctx context.Context) {
	c.mu.Lock()
	if c.state != CacheBacked || c.now().Sub(c.checkedAt) <= c.interval {
		c.mu.Unlock()
		return
	}
	current := c.value
	c.mu.Unlock()

	result := ResultOK
	stored, err := c.store.Get(ctx, StoreName)
	switch {
	case err == nil && Valid(stored):
		if stored != current {
			c.log.Debug().Msg("Stored secret differs from the adopted one, keeping the adopted secret")
		}
	case err == nil || errors.Is(err, cache.ErrNotFound):
		if setErr := c.store.Set(ctx, StoreName, current); setErr != nil {
			c.log.Warn().Err(setErr).Msg("Failed to re-seed the coordination store, keeping the current secret")
			result = ResultError
		} else {
			c.log.Info().Msg("Re-seeded the coordination store with the current secret")
			result = ResultReseeded
		}
	default:
		c.log.Warn().Err(err).Msg("Secret revalidation failed, keeping the current secret")
		result = ResultError
	}

	c.mu.Lock()
	c.checkedAt = c.now()
	c.mu.Unlock()
	c.metrics.revalidated(ctx, result)
}

// generate returns a fresh secret, retrying on crypto/rand when the configured
// entropy source fails.
func (c *Coordinator) generate() string {
	value, err := Generate(c.random)
	if err == nil {
		return value
	}
	c.log.Error().Err(err).Msg("Entropy source failed, using crypto/rand")
	value, err = Generate(nil)
	if err != nil {
		panic(err)
	}
	return value
}
