package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoProviders is returned when a chain is constructed without
	// providers.
	ErrNoProviders = errors.New("at least one provider is required")

	// ErrAllProvidersFailed is returned when every provider in the chain
	// has been attempted without success.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// Attempt records one failed provider try.
type Attempt struct {
	// Provider is the name of the attempted provider.
	Provider string

	// Err is the classified error the provider returned.
	Err error
}

// AllProvidersFailedError is returned when the whole chain is exhausted.
// It carries every attempt in provider order for diagnostics.
type AllProvidersFailedError struct {
	// Attempts lists the failed providers in the order they were tried.
	Attempts []Attempt
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	names := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		names = append(names, a.Provider)
	}
	return fmt.Sprintf("all providers failed (attempted: %s; last error: %v)",
		strings.Join(names, ", "), e.lastErr())
}

// Is implements error matching for errors.Is().
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Unwrap returns the last attempt's error for error chain traversal.
func (e *AllProvidersFailedError) Unwrap() error {
	return e.lastErr()
}

func (e *AllProvidersFailedError) lastErr() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}
