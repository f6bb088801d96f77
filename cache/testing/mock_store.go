package testing

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/gaborage/go-settings/cache"
)

// MockStore is an in-memory cache.Store with configurable failures and call tracking.
// It is safe for concurrent use.
type MockStore struct {
	mu   sync.Mutex
	data map[string]string

	getError error
	setError error

	getCalls atomic.Int64
	setCalls atomic.Int64
}

var _ cache.Store = (*MockStore)(nil)

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]string)}
}

// WithValue seeds name with value.
func (m *MockStore) WithValue(name, value string) *MockStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = value
	return m
}

// WithGetFailure configures Get to return err.
func (m *MockStore) WithGetFailure(err error) *MockStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
	return m
}

// WithSetFailure configures Set to return err.
func (m *MockStore) WithSetFailure(err error) *MockStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setError = err
	return m
}

// Get implements cache.Store.
func (m *MockStore) Get(_ context.Context, name string) (string, error) {
	m.getCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return "", cache.NewOperationError("get", name, classify(m.getError), m.getError)
	}
	v, ok := m.data[name]
	if !ok {
		return "", cache.ErrNotFound
	}
	return v, nil
}

// Set implements cache.Store.
func (m *MockStore) Set(_ context.Context, name, value string) error {
	m.setCalls.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return cache.NewOperationError("set", name, classify(m.setError), m.setError)
	}
	m.data[name] = value
	return nil
}

// Delete removes name, simulating a store that lost its value.
func (m *MockStore) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
}

// Value returns the stored value for name.
func (m *MockStore) Value(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[name]
	return v, ok
}

// GetCalls returns the number of Get calls.
func (m *MockStore) GetCalls() int64 { return m.getCalls.Load() }

// SetCalls returns the number of Set calls.
func (m *MockStore) SetCalls() int64 { return m.setCalls.Load() }

func classify(err error) error {
	if cache.IsUnavailable(err) {
		return cache.ErrUnavailable
	}
	return nil
}
