package store

import (
	"errors"
	"fmt"
)

// Error wraps a driver failure. The gateway never retries a failed
// statement; the error carries the driver's message up to the HTTP
// layer, which reports it as a server-side failure.
type Error struct {
	// Op names the store operation that failed: query, execute, insert.
	Op string

	// Err is the driver's error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap exposes the driver error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsStoreError returns true if the error is a store-level failure.
// Uses errors.As to handle wrapped errors.
func IsStoreError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
