// Package observability installs the OpenTelemetry meter provider that the
// coordination store and secret coordinator record into.
package observability

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/gaborage/go-settings/logger"
)

// DefaultShutdownTimeout is the default timeout for graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Provider manages the lifecycle of the meter provider.
type Provider interface {
	// MeterProvider returns the configured meter provider.
	MeterProvider() metric.MeterProvider

	// Shutdown flushes pending data and stops exporting.
	Shutdown(ctx context.Context) error

	// ForceFlush immediately exports pending data.
	ForceFlush(ctx context.Context) error
}

type provider struct {
	config        Config
	meterProvider *sdkmetric.MeterProvider
	mu            sync.Mutex
}

// NewProvider creates a metrics provider and installs it as the global meter
// provider. A disabled config yields a no-op provider and leaves the global untouched.
func NewProvider(cfg *Config, log logger.Logger) (Provider, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("metrics")

	safeCfg := *cfg
	safeCfg.ApplyDefaults()
	if err := safeCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	if !safeCfg.Enabled {
		log.Debug().Msg("Metrics disabled")
		return noopProvider{}, nil
	}

	p := &provider{config: safeCfg}
	if err := p.initMeterProvider(); err != nil {
		return nil, fmt.Errorf("failed to initialize meter provider: %w", err)
	}
	otel.SetMeterProvider(p.meterProvider)

	log.Info().
		Str("endpoint", safeCfg.Endpoint).
		Str("protocol", safeCfg.Protocol).
		Dur("interval", safeCfg.Interval).
		Msg("Metrics provider installed")
	return p, nil
}

func (p *provider) initMeterProvider() error {
	res, err := p.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := p.createMetricExporter()
	if err != nil {
		return fmt.Errorf("failed to create metric exporter: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(p.config.Interval),
		sdkmetric.WithTimeout(p.config.ExportTimeout),
	)

	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	return nil
}

func (p *provider) createResource() (*resource.Resource, error) {
	custom, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(p.config.ServiceName),
			semconv.ServiceVersion(p.config.ServiceVersion),
			semconv.DeploymentEnvironmentName(p.config.Environment),
		),
	)
	if err != nil {
		return nil, err
	}
	return resource.Merge(resource.Default(), custom)
}

func (p *provider) createMetricExporter() (sdkmetric.Exporter, error) {
	if p.config.Endpoint == EndpointStdout {
		return stdoutmetric.New(stdoutmetric.WithPrettyPrint())
	}

	switch p.config.Protocol {
	case ProtocolHTTP:
		return p.createOTLPHTTPMetricExporter()
	case ProtocolGRPC:
		return p.createOTLPGRPCMetricExporter()
	default:
		return nil, fmt.Errorf("metrics protocol '%s': %w", p.config.Protocol, ErrInvalidProtocol)
	}
}

func (p *provider) createOTLPHTTPMetricExporter() (sdkmetric.Exporter, error) {
	endpoint := p.config.Endpoint
	var opts []otlpmetrichttp.Option
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlpmetrichttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
	}
	if p.config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(p.config.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(p.config.Headers))
	}
	return otlpmetrichttp.New(context.Background(), opts...)
}

func (p *provider) createOTLPGRPCMetricExporter() (sdkmetric.Exporter, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(p.config.Endpoint),
	}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(insecure.NewCredentials()))
	}
	if len(p.config.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(p.config.Headers))
	}
	return otlpmetricgrpc.New(context.Background(), opts...)
}

// MeterProvider returns the configured meter provider.
func (p *provider) MeterProvider() metric.MeterProvider {
	return p.meterProvider
}

// Shutdown gracefully shuts down the provider.
func (p *provider) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.meterProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// ForceFlush immediately flushes any pending telemetry data.
func (p *provider) ForceFlush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.meterProvider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("failed to flush meter provider: %w", err)
	}
	return nil
}

// noopProvider is returned when metrics are disabled.
type noopProvider struct{}

// Noop returns a provider that records nothing.
func Noop() Provider { return noopProvider{} }

func (noopProvider) MeterProvider() metric.MeterProvider { return metricnoop.NewMeterProvider() }
func (noopProvider) Shutdown(context.Context) error      { return nil }
func (noopProvider) ForceFlush(context.Context) error    { return nil }

// Shutdown shuts provider down within timeout. A nil provider is a no-op.
func Shutdown(provider Provider, timeout time.Duration) error {
	if provider == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("observability shutdown failed: %w", err)
	}
	return nil
}
