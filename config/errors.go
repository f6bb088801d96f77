package config

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for source states
var (
	// ErrSourceUnavailable indicates a provider's backing resource does not exist.
	// It is never fatal: resolution falls through to the next source.
	ErrSourceUnavailable = errors.New("source unavailable")
)

// ConfigError represents a configuration error with actionable guidance.
// All error messages are lowercase following Go conventions.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string // error category: "unavailable", "invalid", "unreadable"
	Field    string // setting key or source path
	Message  string // user-friendly error message (lowercase)
	Action   string // actionable instruction (lowercase)
	Err      error  // underlying cause, if any
}

// Error implements the error interface with lowercase formatting.
func (e *ConfigError) Error() string {
	var parts []string

	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	if e.Err != nil {
		parts = append(parts, fmt.Sprintf("(%v)", e.Err))
	}

	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewUnavailableSourceError reports a missing settings resource.
func NewUnavailableSourceError(path string) *ConfigError {
	return &ConfigError{
		Category: "unavailable",
		Field:    path,
		Message:  "settings file not found",
		Action:   "falling back to environment variables",
		Err:      ErrSourceUnavailable,
	}
}

// NewUnreadableSourceError reports a settings resource that exists but could not be read or parsed.
func NewUnreadableSourceError(path string, err error) *ConfigError {
	return &ConfigError{
		Category: "unreadable",
		Field:    path,
		Message:  "settings file could not be loaded",
		Action:   "check file permissions and syntax",
		Err:      err,
	}
}
