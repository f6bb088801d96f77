package cache

import (
	"errors"
	"fmt"
)

// Sentinel errors for common store outcomes.
// Use errors.Is() to check for these specific error conditions.
var (
	// ErrNotFound is returned when a name holds no value.
	// This is not a failure - callers treat it as "absent".
	ErrNotFound = errors.New("cache: key not found")

	// ErrUnavailable tags transient store failures: connection refused, timeouts,
	// a sealed or read-only backend. Callers fall back to local behavior on it.
	ErrUnavailable = errors.New("cache: store unavailable")

	// ErrReadOnly is returned when the store accepted the connection but refused
	// a write, typically because a replica was promoted for reads only.
	// It wraps ErrUnavailable.
	ErrReadOnly = fmt.Errorf("%w: read-only", ErrUnavailable)

	// ErrClosed is returned when attempting to use a closed store.
	ErrClosed = errors.New("cache: connection closed")
)

// IsUnavailable reports whether err is a transient store failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// ConfigError represents a configuration error during store initialization.
type ConfigError struct {
	Field   string // Configuration field that failed validation
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cache configuration error: %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("cache configuration error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new configuration error.
func NewConfigError(field, message string, err error) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// OperationError represents a failed store operation.
// Kind is ErrUnavailable, ErrReadOnly or nil for failures that are neither.
type OperationError struct {
	Op   string // Operation that failed (e.g., "get", "set")
	Key  string // Name involved in the operation
	Kind error  // Classification sentinel, if any
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	return fmt.Sprintf("cache operation error: %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap exposes both the classification and the cause to errors.Is/As.
func (e *OperationError) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// NewOperationError creates a new operation error classified by kind.
func NewOperationError(op, key string, kind, err error) *OperationError {
	return &OperationError{
		Op:   op,
		Key:  key,
		Kind: kind,
		Err:  err,
	}
}
