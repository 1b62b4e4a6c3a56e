package mirror

import "sync/atomic"

// Clock stamps events with a strictly increasing sequence number so the
// log lines for one event's enqueue, retries, and terminal outcome can
// be correlated without giving events an identity on the wire.
//
// Thread-safety: safe for concurrent use; every request handler calls
// Next while the worker reads the stamped value.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
