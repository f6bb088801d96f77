package secret

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "go-settings/secret"

	metricAcquisitions  = "secret.acquisitions"
	metricRevalidations = "secret.revalidations"

	attrSource = "source"
	attrResult = "result"
)

// Acquisition sources.
const (
	SourceConfig    = "config"
	SourceStore     = "store"
	SourceGenerated = "generated"
	SourceFallback  = "fallback"
)

// Revalidation results.
const (
	ResultOK       = "ok"
	ResultReseeded = "reseeded"
	ResultError    = "error"
)

type instruments struct {
	acquisitions  metric.Int64Counter
	revalidations metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider) *instruments {
	meter := mp.Meter(meterName)
	inst := &instruments{}

	var err error
	inst.acquisitions, err = meter.Int64Counter(
		metricAcquisitions,
		metric.WithDescription("Number of secret acquisitions by source"),
		metric.WithUnit("{acquisition}"),
	)
	logMetricError(metricAcquisitions, err)

	inst.revalidations, err = meter.Int64Counter(
		metricRevalidations,
		metric.WithDescription("Number of secret revalidations against the coordination store"),
		metric.WithUnit("{check}"),
	)
	logMetricError(metricRevalidations, err)

	return inst
}

func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize secret metric %s: %v\n", metricName, err)
	}
}

func (i *instruments) acquired(ctx context.Context, source string) {
	if i.acquisitions != nil {
		i.acquisitions.Add(ctx, 1, metric.WithAttributes(attribute.String(attrSource, source)))
	}
}

func (i *instruments) revalidated(ctx context.Context, result string) {
	if i.revalidations != nil {
		i.revalidations.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	}
}
