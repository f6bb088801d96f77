package observability

import (
	"fmt"
	"strings"
	"time"

	"github.com/gaborage/go-settings/config"
)

const (
	// EndpointStdout is a special endpoint value that outputs to stdout (for local development).
	EndpointStdout = "stdout"

	// ProtocolHTTP specifies OTLP over HTTP/protobuf.
	ProtocolHTTP = "http"

	// ProtocolGRPC specifies OTLP over gRPC.
	ProtocolGRPC = "grpc"

	// DefaultInterval is how often metrics are exported when no interval is configured.
	DefaultInterval = 60 * time.Second

	// DefaultExportTimeout bounds a single export.
	DefaultExportTimeout = 30 * time.Second
)

// Config defines how store and secret metrics are exported.
type Config struct {
	// Enabled controls whether a meter provider is installed.
	// When false, all metric operations become no-ops.
	Enabled bool

	ServiceName    string
	ServiceVersion string
	Environment    string

	// Endpoint is EndpointStdout or an OTLP collector address.
	Endpoint string
	// Protocol is ProtocolHTTP or ProtocolGRPC. Ignored for stdout.
	Protocol string
	Insecure bool
	Headers  map[string]string

	Interval      time.Duration
	ExportTimeout time.Duration
}

// FromSettings builds a Config from the metrics_* settings.
func FromSettings(s *config.Settings, version string) *Config {
	return &Config{
		Enabled:        s.Truthy(config.KeyMetricsEnabled),
		ServiceName:    s.GetString(config.KeyServiceName),
		ServiceVersion: version,
		Environment:    s.GetString(config.KeyEnvironment),
		Endpoint:       s.GetString(config.KeyMetricsEndpoint),
		Protocol:       strings.ToLower(s.GetString(config.KeyMetricsProtocol)),
		Insecure:       s.Truthy(config.KeyMetricsInsecure),
		Interval:       time.Duration(s.GetInt(config.KeyMetricsInterval)) * time.Second,
	}
}

// ApplyDefaults sets default values for any config fields that are not specified.
func (c *Config) ApplyDefaults() {
	if c.ServiceVersion == "" {
		c.ServiceVersion = "unknown"
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.Endpoint == "" {
		c.Endpoint = EndpointStdout
	}
	if c.Protocol == "" {
		c.Protocol = ProtocolHTTP
	}
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.ExportTimeout == 0 {
		c.ExportTimeout = DefaultExportTimeout
	}
}

// Validate checks the configuration. A disabled config is always valid.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}
	if c.Endpoint == EndpointStdout {
		return nil
	}

	hasScheme := strings.HasPrefix(c.Endpoint, "http://") || strings.HasPrefix(c.Endpoint, "https://")
	switch c.Protocol {
	case ProtocolHTTP:
		return nil
	case ProtocolGRPC:
		if hasScheme {
			return fmt.Errorf("grpc endpoint %q must be host:port: %w", c.Endpoint, ErrInvalidEndpointFormat)
		}
		return nil
	default:
		return fmt.Errorf("metrics protocol '%s': %w", c.Protocol, ErrInvalidProtocol)
	}
}
