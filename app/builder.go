package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/descriptor"
	"github.com/gaborage/go-settings/logger"
	"github.com/gaborage/go-settings/observability"
	"github.com/gaborage/go-settings/secret"
)

// Builder orchestrates the step-by-step construction of an App. Each step
// handles one concern and is a no-op once an earlier step failed.
type Builder struct {
	opts *Options

	log       logger.Logger
	settings  *config.Settings
	telemetry observability.Provider
	synth     *descriptor.Synthesizer
	store     cache.Store
	closer    *lazyStore
	coord     *secret.Coordinator

	err error
}

// NewBuilder creates a builder for opts. nil opts means the defaults.
func NewBuilder(opts *Options) *Builder {
	if opts == nil {
		opts = &Options{}
	}
	return &Builder{opts: opts}
}

// CreateLogger selects the logger used by every component.
func (b *Builder) CreateLogger() *Builder {
	if b.err != nil {
		return b
	}

	b.log = b.opts.Logger
	if b.log == nil {
		b.log = logger.New("info", false)
	}
	return b
}

// LoadSettings resolves the active settings source over the bundled defaults.
func (b *Builder) LoadSettings() *Builder {
	if b.err != nil {
		return b
	}
	if b.log == nil {
		b.err = fmt.Errorf("logger required before loading settings")
		return b
	}

	if b.opts.Settings != nil {
		b.settings = b.opts.Settings
		return b
	}

	opts := append([]config.Option{
		config.WithBlankProvider(b.opts.TestMode),
		config.WithLogger(b.log),
	}, b.opts.ConfigOptions...)

	settings, err := config.Load(opts...)
	if err != nil {
		b.err = fmt.Errorf("failed to load settings: %w", err)
		return b
	}
	b.settings = settings
	b.log.Debug().
		Str("provider", fmt.Sprint(settings.Provider())).
		Bool("test_mode", b.opts.TestMode).
		Msg("Settings source selected")
	return b
}

// CreateTelemetry installs the meter provider that store and secret metrics
// are recorded into.
func (b *Builder) CreateTelemetry() *Builder {
	if b.err != nil {
		return b
	}
	if b.settings == nil {
		b.err = fmt.Errorf("settings required before creating telemetry")
		return b
	}

	if b.opts.Telemetry != nil {
		b.telemetry = b.opts.Telemetry
		return b
	}

	provider, err := observability.NewProvider(observability.FromSettings(b.settings, b.opts.Version), b.log)
	if err != nil {
		b.log.Warn().Err(err).Msg("Metrics settings rejected, metrics disabled")
		provider = observability.Noop()
	}
	b.telemetry = provider
	return b
}

// CreateSynthesizer creates the descriptor synthesizer.
func (b *Builder) CreateSynthesizer() *Builder {
	if b.err != nil {
		return b
	}
	if b.settings == nil {
		b.err = fmt.Errorf("settings required before creating synthesizer")
		return b
	}

	opts := []descriptor.Option{descriptor.WithTestMode(b.opts.TestMode)}
	if b.opts.LookupEnv != nil {
		opts = append(opts, descriptor.WithLookupEnv(b.opts.LookupEnv))
	}
	opts = append(opts, b.opts.DescriptorOptions...)

	b.synth = descriptor.NewSynthesizer(b.settings, b.log, opts...)
	return b
}

// PrepareStore selects the coordination store. The backend is opened on first
// use, so resolving settings never touches the network.
func (b *Builder) PrepareStore() *Builder {
	if b.err != nil {
		return b
	}
	if b.synth == nil {
		b.err = fmt.Errorf("synthesizer required before preparing store")
		return b
	}

	switch {
	case b.opts.SkipRedis:
		b.log.Debug().Msg("Coordination store skipped")
	case b.opts.Store != nil:
		b.store = b.opts.Store
	default:
		connector := b.opts.StoreConnector
		if connector == nil {
			connector = ConnectStore
		}
		settings, synth := b.settings, b.synth
		b.closer = &lazyStore{
			log: b.log.Named("store"),
			connect: func(ctx context.Context) (cache.Store, error) {
				return connector(ctx, storeBackend(ctx, settings, synth))
			},
		}
		b.store = b.closer
	}
	return b
}

// CreateCoordinator creates the secret coordinator over the prepared store.
func (b *Builder) CreateCoordinator() *Builder {
	if b.err != nil {
		return b
	}
	if b.settings == nil {
		b.err = fmt.Errorf("settings required before creating coordinator")
		return b
	}

	b.coord = secret.NewCoordinator(b.settings, b.store, b.log, b.opts.SecretOptions...)
	return b
}

// Build returns the assembled App or the first error encountered.
func (b *Builder) Build() (*App, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.coord == nil {
		return nil, fmt.Errorf("coordinator required before building app")
	}

	lookupEnv := b.opts.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	return &App{
		settings:    b.settings,
		log:         b.log,
		telemetry:   b.telemetry,
		synth:       b.synth,
		coordinator: b.coord,
		store:       b.store,
		closer:      b.closer,
		lookupEnv:   lookupEnv,
		testMode:    b.opts.TestMode,
		skipDB:      b.opts.SkipDB,
		skipRedis:   b.opts.SkipRedis,
	}, nil
}

// Error returns the first error encountered, if any.
func (b *Builder) Error() error {
	return b.err
}
