package tracking

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gaborage/go-settings/cache"
)

const (
	// Meter name for coordination store instrumentation
	storeMeterName = "go-settings/cache"

	// Using db.client.operation.duration since redis and vault are remote stores
	metricStoreOperationDuration = "db.client.operation.duration" // Histogram in seconds
	metricStoreMiss              = "cache.miss"                   // Counter for absent names

	attrDBSystem    = "db.system.name"
	attrDBOperation = "db.operation.name"
	attrErrorType   = "error.type"
)

// Store operation names
const (
	OpGet    = "get"
	OpSet    = "set"
	OpHealth = "ping"
)

var (
	meterOnce sync.Once

	storeOperationDuration metric.Float64Histogram
	storeMissCounter       metric.Int64Counter
)

func logMetricError(metricName string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: Failed to initialize store metric %s: %v\n", metricName, err)
	}
}

func initStoreMeter() {
	meter := otel.Meter(storeMeterName)

	var err error
	storeOperationDuration, err = meter.Float64Histogram(
		metricStoreOperationDuration,
		metric.WithDescription("Duration of coordination store operations"),
		metric.WithUnit("s"),
	)
	logMetricError(metricStoreOperationDuration, err)

	storeMissCounter, err = meter.Int64Counter(
		metricStoreMiss,
		metric.WithDescription("Number of lookups for names holding no value"),
		metric.WithUnit("{miss}"),
	)
	logMetricError(metricStoreMiss, err)
}

// RecordStoreOperation records the duration and outcome of one store round-trip.
// A cache.ErrNotFound result counts as a miss, not as an error.
func RecordStoreOperation(ctx context.Context, system, operation string, duration time.Duration, err error) {
	meterOnce.Do(initStoreMeter)

	attrs := []attribute.KeyValue{
		attribute.String(attrDBSystem, system),
		attribute.String(attrDBOperation, operation),
	}

	if errors.Is(err, cache.ErrNotFound) {
		if storeMissCounter != nil {
			storeMissCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	} else if err != nil {
		attrs = append(attrs, attribute.String(attrErrorType, ClassifyError(err)))
	}

	if storeOperationDuration != nil {
		storeOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
}

// ClassifyError returns an error classification string for metrics.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, cache.ErrReadOnly):
		return "read_only"
	case errors.Is(err, cache.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, cache.ErrClosed):
		return "closed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// ResetForTesting drops the cached instruments so the next recording binds to
// the current global meter provider.
func ResetForTesting() {
	storeOperationDuration = nil
	storeMissCounter = nil
	meterOnce = sync.Once{}
}
