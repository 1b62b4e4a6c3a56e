package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay_Doubles(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, Base: 250 * time.Millisecond, Max: 5 * time.Second}

	assert.Equal(t, 250*time.Millisecond, p.Delay(1))
	assert.Equal(t, 500*time.Millisecond, p.Delay(2))
	assert.Equal(t, 1*time.Second, p.Delay(3))
	assert.Equal(t, 2*time.Second, p.Delay(4))
	assert.Equal(t, 4*time.Second, p.Delay(5))
}

func TestRetryPolicy_Delay_CapsAtMax(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, Base: time.Second, Max: 3 * time.Second}

	assert.Equal(t, 3*time.Second, p.Delay(3))
	assert.Equal(t, 3*time.Second, p.Delay(9))
	assert.Equal(t, 3*time.Second, p.Delay(64), "overflow-range attempts still cap")
}

func TestRetryPolicy_Delay_AttemptFloor(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, Base: 100 * time.Millisecond, Max: time.Second}

	assert.Equal(t, p.Delay(1), p.Delay(0))
	assert.Equal(t, p.Delay(1), p.Delay(-4))
}

func TestRetryPolicy_Normalized(t *testing.T) {
	got := RetryPolicy{}.normalized()
	assert.Equal(t, DefaultRetry, got)

	partial := RetryPolicy{MaxAttempts: 7}.normalized()
	assert.Equal(t, 7, partial.MaxAttempts)
	assert.Equal(t, DefaultRetry.Base, partial.Base)
	assert.Equal(t, DefaultRetry.Max, partial.Max)
}

func TestBreaker_Normalized(t *testing.T) {
	got := Breaker{}.normalized()
	assert.Equal(t, DefaultBreaker, got)

	partial := Breaker{TripAfter: 2}.normalized()
	assert.Equal(t, uint32(2), partial.TripAfter)
	assert.Equal(t, DefaultBreaker.Cooldown, partial.Cooldown)
}
