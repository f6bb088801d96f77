// Package app ties resolved settings, the secret coordinator and the descriptor
// synthesizer into one explicit configuration context. Components receive an
// *App instead of reaching for process-wide state.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/database/postgresql"
	"github.com/gaborage/go-settings/descriptor"
	"github.com/gaborage/go-settings/logger"
	"github.com/gaborage/go-settings/observability"
	"github.com/gaborage/go-settings/secret"
)

// LoadPluginsEnv overrides plugin loading: "1" enables it, "0" disables it.
const LoadPluginsEnv = "LOAD_PLUGINS"

var (
	// ErrDatabaseSkipped is returned by OpenDatabase when the app runs with SkipDB.
	ErrDatabaseSkipped = errors.New("database skipped")
	// ErrStoreSkipped is returned by StoreHealth when the app runs with SkipRedis.
	ErrStoreSkipped = errors.New("coordination store skipped")
)

// App is the configuration context of one process.
type App struct {
	settings    *config.Settings
	log         logger.Logger
	telemetry   observability.Provider
	flushOnce   sync.Once
	synth       *descriptor.Synthesizer
	coordinator *secret.Coordinator
	store       cache.Store
	closer      *lazyStore
	lookupEnv   func(string) (string, bool)

	testMode  bool
	skipDB    bool
	skipRedis bool

	s3mu     sync.Mutex
	useS3    *bool
	s3Bucket *string
}

// New assembles an App from opts. nil opts means the defaults.
func New(opts *Options) (*App, error) {
	return NewBuilder(opts).
		CreateLogger().
		LoadSettings().
		CreateTelemetry().
		CreateSynthesizer().
		PrepareStore().
		CreateCoordinator().
		Build()
}

// Settings returns the resolved settings.
func (a *App) Settings() *config.Settings { return a.settings }

// Logger returns the application logger.
func (a *App) Logger() logger.Logger { return a.log }

// SkipDB reports whether the relational database is disabled for this process.
func (a *App) SkipDB() bool { return a.skipDB }

// SkipRedis reports whether the coordination store is disabled for this process.
func (a *App) SkipRedis() bool { return a.skipRedis }

// TestMode reports whether the app was built for an isolated test run.
func (a *App) TestMode() bool { return a.testMode }

// SecretKeyBase returns the application secret. It never fails.
func (a *App) SecretKeyBase(ctx context.Context) string {
	return a.coordinator.SecretKeyBase(ctx)
}

// SecretState reports where the current secret came from.
func (a *App) SecretState() secret.State {
	return a.coordinator.State()
}

// DatabaseConfig synthesizes the database descriptor. overrides win over
// configured session variables.
func (a *App) DatabaseConfig(overrides map[string]any) *descriptor.Database {
	return a.synth.Database(overrides)
}

// RedisConfig synthesizes the cache descriptor.
func (a *App) RedisConfig(ctx context.Context) *descriptor.Cache {
	return a.synth.Cache(ctx)
}

// MessageBusRedisConfig synthesizes the message bus descriptor.
func (a *App) MessageBusRedisConfig(ctx context.Context) *descriptor.Cache {
	return a.synth.MessageBus(ctx)
}

// CDNHostnames returns the hostnames served through the CDN.
func (a *App) CDNHostnames() []string {
	return a.synth.CDNHostnames()
}

// OpenDatabase opens a pooled connection described by DatabaseConfig(overrides).
func (a *App) OpenDatabase(overrides map[string]any) (*postgresql.Connection, error) {
	if a.skipDB {
		return nil, ErrDatabaseSkipped
	}
	return postgresql.NewConnection(a.DatabaseConfig(overrides), a.log)
}

// StoreHealth probes the coordination store, opening it if needed.
func (a *App) StoreHealth(ctx context.Context) error {
	if a.store == nil {
		return ErrStoreSkipped
	}
	if hc, ok := a.store.(cache.HealthChecker); ok {
		return hc.Health(ctx)
	}
	return nil
}

// LoadPlugins reports whether plugins should be loaded. LOAD_PLUGINS decides
// when set to 1 or 0; otherwise plugins load everywhere but in test mode.
func (a *App) LoadPlugins() bool {
	if v, ok := a.lookupEnv(LoadPluginsEnv); ok {
		switch v {
		case "1":
			return true
		case "0":
			return false
		}
	}
	return !a.testMode
}

// Reset clears memoized settings, the secret slot and the S3 memo.
func (a *App) Reset() {
	a.settings.Reset()
	a.coordinator.Reset()
	a.ResetS3Cache()
}

// Close releases the coordination store if this App opened it and flushes
// pending metrics.
func (a *App) Close() error {
	var errs []error
	if a.closer != nil {
		if err := a.closer.Close(); err != nil && !errors.Is(err, cache.ErrClosed) {
			a.log.Error().Err(err).Msg("Failed to close coordination store")
			errs = append(errs, err)
		}
	}
	a.flushOnce.Do(func() {
		if err := observability.Shutdown(a.telemetry, observability.DefaultShutdownTimeout); err != nil {
			a.log.Error().Err(err).Msg("Failed to shut down metrics provider")
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
