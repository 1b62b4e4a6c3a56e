package testutil

// FixedRequestIDs hands out the same request id every time.
//
// Production mints a UUIDv7 per request; golden tests need the id in
// the transcript to be byte-identical across runs, so every request in
// a scenario shares this one.
//
// Thread-safety: FixedRequestIDs is stateless and safe for concurrent use.
type FixedRequestIDs struct {
	id string
}

// NewFixedRequestIDs creates a generator that always returns id.
// If id is empty, Generate returns "test-request-default".
func NewFixedRequestIDs(id string) *FixedRequestIDs {
	if id == "" {
		id = "test-request-default"
	}
	return &FixedRequestIDs{id: id}
}

// Generate returns the fixed request id.
//
// Implements httpapi.RequestIDGenerator.
func (g *FixedRequestIDs) Generate() string {
	return g.id
}
