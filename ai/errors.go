package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrPrimaryRequired is returned when a primary embedder is not provided.
	ErrPrimaryRequired = errors.New("primary embedder required")

	// ErrFallbackRequired is returned when a fallback embedder is not provided.
	ErrFallbackRequired = errors.New("fallback embedder required")
)

// ProviderError wraps a failure from a specific embedding provider so
// callers can tell which path failed.
type ProviderError struct {
	Provider string // "primary" or "fallback"
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s embedding provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
