//go:build integration

package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-settings/cache"
	"github.com/gaborage/go-settings/testing/containers"
)

// setupRealRedis creates a real Redis container and a store for integration testing.
func setupRealRedis(t *testing.T) (*Store, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	t.Cleanup(cancel)

	redisContainer := containers.MustStartRedisContainer(ctx, t, nil)

	store, err := NewStore(redisContainer.Descriptor())
	require.NoError(t, err, "Failed to create Redis store")
	t.Cleanup(func() { _ = store.Close() })

	return store, ctx
}

func TestRealRedisRoundTrip(t *testing.T) {
	store, ctx := setupRealRedis(t)

	_, err := store.Get(ctx, testName)
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, store.Set(ctx, testName, testValue))

	value, err := store.Get(ctx, testName)
	require.NoError(t, err)
	assert.Equal(t, testValue, value)
}

func TestRealRedisConcurrentAccess(t *testing.T) {
	store, ctx := setupRealRedis(t)

	const workers = 20

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("test:worker:%d", id)
			if err := store.Set(ctx, name, name); err != nil {
				errs <- err
				return
			}
			if got, err := store.Get(ctx, name); err != nil || got != name {
				errs <- fmt.Errorf("worker %d read %q: %v", id, got, err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestRealRedisHealthAndStats(t *testing.T) {
	store, ctx := setupRealRedis(t)

	require.NoError(t, store.Health(ctx))

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Contains(t, stats, "pool_total_conns")
}

func TestRealRedisContextCancellation(t *testing.T) {
	store, setupCtx := setupRealRedis(t)

	ctx, cancel := context.WithCancel(setupCtx)
	cancel()

	_, err := store.Get(ctx, testName)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}
