package memocache

import "errors"

// Common cache errors.
var (
	// ErrInvalidKey is returned by write operations when the key is empty.
	// Reads never return it; a lookup with an empty key is a plain miss.
	ErrInvalidKey = errors.New("cache key cannot be empty")

	// ErrNilFunc is returned when a nil function is memoized or loaded.
	ErrNilFunc = errors.New("memoized function cannot be nil")

	// ErrMissingOperation is returned by GenerateKey when the params name
	// no operation.
	ErrMissingOperation = errors.New("key operation cannot be empty")
)
