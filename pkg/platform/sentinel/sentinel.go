// Package sentinel holds infrastructure errors shared across layers. Stores and
// clients return them, possibly wrapped, and callers match with errors.Is.
package sentinel

import "errors"

var (
	// ErrNotFound means a store has no live entry for the key.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable means a dependency refused the call without trying it,
	// such as an open circuit breaker.
	ErrUnavailable = errors.New("unavailable")
)
