package tracking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/gaborage/go-settings/cache"
)

func setupTestMeterProvider(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	ResetForTesting()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		ResetForTesting()
	})

	return reader
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"read only", cache.NewOperationError(OpSet, "k", cache.ErrReadOnly, errors.New("READONLY")), "read_only"},
		{"unavailable", cache.NewOperationError(OpGet, "k", cache.ErrUnavailable, errors.New("refused")), "unavailable"},
		{"closed", fmt.Errorf("get: %w", cache.ErrClosed), "closed"},
		{"timeout", fmt.Errorf("dial: %w", context.DeadlineExceeded), "timeout"},
		{"other", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestRecordStoreOperation(t *testing.T) {
	reader := setupTestMeterProvider(t)
	ctx := context.Background()

	RecordStoreOperation(ctx, "redis", OpGet, 3*time.Millisecond, nil)
	RecordStoreOperation(ctx, "redis", OpGet, time.Millisecond, cache.ErrNotFound)
	RecordStoreOperation(ctx, "redis", OpSet, time.Millisecond,
		cache.NewOperationError(OpSet, "k", cache.ErrUnavailable, errors.New("refused")))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var foundDuration, foundMiss bool
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != storeMeterName {
			continue
		}
		for _, m := range sm.Metrics {
			switch m.Name {
			case metricStoreOperationDuration:
				foundDuration = true
				hist, ok := m.Data.(metricdata.Histogram[float64])
				require.True(t, ok, "expected histogram data")

				var total uint64
				var sawUnavailable bool
				for _, dp := range hist.DataPoints {
					total += dp.Count
					if v, ok := dp.Attributes.Value(attribute.Key(attrErrorType)); ok {
						assert.Equal(t, "unavailable", v.AsString())
						sawUnavailable = true
					}
				}
				assert.Equal(t, uint64(3), total)
				assert.True(t, sawUnavailable, "expected an error.type attribute on the failed set")

			case metricStoreMiss:
				foundMiss = true
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "expected sum data")
				require.Len(t, sum.DataPoints, 1)
				assert.Equal(t, int64(1), sum.DataPoints[0].Value)
			}
		}
	}

	assert.True(t, foundDuration, "duration histogram not recorded")
	assert.True(t, foundMiss, "miss counter not recorded")
}
