package mirror

import "time"

// RetryPolicy bounds redelivery of a failing event. Attempts count per
// event; the delay before each retry doubles from Base and caps at Max.
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
	Max         time.Duration
}

// DefaultRetry applies wherever the configured policy leaves a field zero.
var DefaultRetry = RetryPolicy{
	MaxAttempts: 3,
	Base:        250 * time.Millisecond,
	Max:         5 * time.Second,
}

// Delay returns the pause after the given failed attempt (counted from
// 1): Base doubled per attempt, capped at Max.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 32 {
		// The shift below would overflow long before this; every such
		// delay is capped anyway.
		return p.Max
	}
	d := p.Base << (attempt - 1)
	if d <= 0 || d > p.Max {
		return p.Max
	}
	return d
}

// normalized fills zero fields from DefaultRetry.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetry.MaxAttempts
	}
	if p.Base <= 0 {
		p.Base = DefaultRetry.Base
	}
	if p.Max <= 0 {
		p.Max = DefaultRetry.Max
	}
	return p
}

// Breaker configures the circuit breaker guarding the webhook. After
// TripAfter consecutive failed calls the circuit opens and deliveries
// are shed without touching the network until Cooldown elapses; one
// half-open probe then decides whether the circuit closes again.
type Breaker struct {
	TripAfter uint32
	Cooldown  time.Duration
}

// DefaultBreaker applies wherever the configured breaker leaves a field zero.
var DefaultBreaker = Breaker{
	TripAfter: 5,
	Cooldown:  30 * time.Second,
}

// normalized fills zero fields from DefaultBreaker.
func (b Breaker) normalized() Breaker {
	if b.TripAfter == 0 {
		b.TripAfter = DefaultBreaker.TripAfter
	}
	if b.Cooldown <= 0 {
		b.Cooldown = DefaultBreaker.Cooldown
	}
	return b
}
