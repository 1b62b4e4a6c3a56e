package httpapi

import "github.com/google/uuid"

// RequestIDGenerator mints the correlation id attached to every request.
// Implemented by UUIDv7Generator (production) and testutil.FixedRequestIDs
// (golden tests).
type RequestIDGenerator interface {
	Generate() string
}

// UUIDv7Generator issues UUIDv7 request ids. The embedded timestamp
// keeps ids roughly sortable, so log lines grep into arrival order.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
