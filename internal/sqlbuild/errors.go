package sqlbuild

import (
	"errors"
	"fmt"
)

// ValidationError reports a request shape the builder refuses to turn
// into SQL: a malformed identifier, an empty record, or an update whose
// SET list would be empty. These map to HTTP 400, not 500 - the store
// never sees the statement.
type ValidationError struct {
	// Message is a human-readable description.
	Message string

	// Field names the offending identifier or column, when there is one.
	Field string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %q", e.Message, e.Field)
	}
	return e.Message
}

// IsValidation returns true if the error is a builder validation error.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
