package testutil

import (
	"context"
	"sync"
	"time"
)

// SleepRecorder substitutes for the mirror worker's backoff sleeper in
// tests: every requested delay returns immediately and is recorded, so
// a retry progression can be asserted without waiting it out.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

// NewSleepRecorder creates an empty recorder.
func NewSleepRecorder() *SleepRecorder {
	return &SleepRecorder{}
}

// Sleep records the requested delay and returns without pausing. It
// still honors cancellation so abandoned deliveries behave as in
// production.
func (s *SleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Delays returns a copy of every delay requested so far, in order.
func (s *SleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.delays))
	copy(out, s.delays)
	return out
}

// Reset clears the recorded delays for test reuse.
func (s *SleepRecorder) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = nil
}
