package testing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-settings/cache"
)

func TestMockStoreGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore().WithValue("a", "1")

	v, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrNotFound)

	require.NoError(t, m.Set(ctx, "b", "2"))
	v, ok := m.Value("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	m.Delete("a")
	_, ok = m.Value("a")
	assert.False(t, ok)

	assert.Equal(t, int64(2), m.GetCalls())
	assert.Equal(t, int64(1), m.SetCalls())
}

func TestMockStoreFailures(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore().
		WithGetFailure(cache.ErrUnavailable).
		WithSetFailure(cache.ErrReadOnly)

	_, err := m.Get(ctx, "a")
	assert.True(t, cache.IsUnavailable(err))

	err = m.Set(ctx, "a", "1")
	assert.ErrorIs(t, err, cache.ErrReadOnly)

	other := errors.New("boom")
	_, err = NewMockStore().WithGetFailure(other).Get(ctx, "a")
	assert.ErrorIs(t, err, other)
	assert.False(t, cache.IsUnavailable(err))
}

func TestMockStoreConcurrentUse(t *testing.T) {
	ctx := context.Background()
	m := NewMockStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Set(ctx, "k", "v")
			_, _ = m.Get(ctx, "k")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), m.GetCalls())
	assert.Equal(t, int64(20), m.SetCalls())
}
