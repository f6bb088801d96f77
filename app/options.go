package app

import (
	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/config"
	"github.com/gaborage/go-settings/descriptor"
	"github.com/gaborage/go-settings/logger"
	"github.com/gaborage/go-settings/observability"
	"github.com/gaborage/go-settings/secret"
)

// Options contains optional dependencies for creating an App instance.
// The zero value loads settings from the configured source, logs at info level
// and shares the secret through the backend named by secret_store.
type Options struct {
	// Settings replaces config.Load. ConfigOptions are ignored when it is set.
	Settings      *config.Settings
	ConfigOptions []config.Option
	Logger        logger.Logger

	// TestMode selects the blank provider, the test cache namespace and
	// disables plugin loading unless LOAD_PLUGINS says otherwise.
	TestMode  bool
	SkipDB    bool
	SkipRedis bool

	// Store replaces the coordination store; StoreConnector replaces how it is
	// opened. Both are ignored when SkipRedis is set.
	Store          cache.Store
	StoreConnector StoreConnector

	// Version is reported as the service version on exported metrics.
	Version string
	// Telemetry replaces the meter provider built from the metrics_* settings.
	Telemetry observability.Provider

	LookupEnv         func(string) (string, bool)
	DescriptorOptions []descriptor.Option
	SecretOptions     []secret.Option
}
