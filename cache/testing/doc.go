// Package testing provides an in-memory cache.Store for unit tests.
//
// MockStore follows a fluent configuration style so a test can simulate an
// unreachable or read-only store and then assert how many round-trips the code
// under test made:
//
//	store := testing.NewMockStore().
//	    WithGetFailure(cache.ErrUnavailable)
//	// ... exercise the code ...
//	assert.Equal(t, int64(1), store.GetCalls())
package testing
