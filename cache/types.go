// Package cache defines the coordination-store boundary: a shared,
// network-accessible key-value store that processes of one fleet consult as the
// source of truth for values they must agree on, such as the application secret.
package cache

import "context"

// Store is the minimal contract the secret coordinator needs from a shared store.
// Implementations must be safe for concurrent use.
//
// Get returns ErrNotFound when name holds no value. Failures caused by the store
// being unreachable or refusing writes wrap ErrUnavailable (and ErrReadOnly for
// refused writes) so callers can branch on the transient case with errors.Is.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
}

// HealthChecker is implemented by stores that can probe their backend.
type HealthChecker interface {
	Health(ctx context.Context) error
}
