// Package config resolves application settings from exactly one active source
// (a settings file, the process environment, or nothing in test runs) layered
// over a bundled defaults table, and memoizes every resolved key.
package config

import (
	"errors"
	"os"

	"github.com/gaborage/go-settings/logger"
)

// DefaultPath is the settings file consulted when no path is configured.
const DefaultPath = "config/app.conf"

type options struct {
	path      string
	blank     bool
	envPrefix string
	log       logger.Logger
}

// Option customizes Configure and Load.
type Option func(*options)

// WithPath sets the settings file path.
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithBlankProvider selects the blank provider, used for isolated test runs.
func WithBlankProvider(blank bool) Option {
	return func(o *options) { o.blank = blank }
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// WithLogger sets the logger used for source diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) *options {
	o := &options{path: DefaultPath, envPrefix: DefaultEnvPrefix}
	if p := os.Getenv(DefaultEnvPrefix + "CONFIG_PATH"); p != "" {
		o.path = p
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Configure chooses the active provider: blank in test mode, otherwise the
// settings file when it exists, otherwise the environment. It never fails; an
// unreadable settings file is reported and the environment is used instead.
func Configure(opts ...Option) Provider {
	o := buildOptions(opts)

	if o.blank {
		return NewBlankProvider(o.envPrefix)
	}

	fp, err := LoadFileProvider(o.path)
	if err == nil {
		return fp
	}

	if o.log != nil && !errors.Is(err, ErrSourceUnavailable) {
		o.log.Warn().Err(err).Str("path", o.path).Msg("Settings file skipped, using environment")
	}
	return NewEnvProvider(o.envPrefix)
}

// Load configures the provider and returns Settings over the bundled defaults.
func Load(opts ...Option) (*Settings, error) {
	defaults, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	return NewSettings(Configure(opts...), defaults), nil
}
