// Package ratelimit spaces outbound search calls so the gallery stays within
// the Pixabay request budget. One Limiter is shared by the whole process.
package ratelimit

import (
	"time"
)

// RequestsPerMinute is the outbound call budget.
const RequestsPerMinute = 100

// MinInterval is the minimum spacing between two consecutive calls.
const MinInterval = time.Minute / RequestsPerMinute

// State is a snapshot of the limiter.
type State struct {
	// LastInvocation is when the most recent call was let through.
	// Zero until the first call.
	LastInvocation time.Time `json:"last_invocation"`

	// MinInterval between consecutive calls.
	MinInterval time.Duration `json:"min_interval"`
}

// NextAllowed returns the earliest time the next call may proceed.
func (s State) NextAllowed() time.Time {
	if s.LastInvocation.IsZero() {
		return time.Time{}
	}
	return s.LastInvocation.Add(s.MinInterval)
}

// TimeUntilNext returns how long a call made now would be delayed.
func (s State) TimeUntilNext() time.Duration {
	d := time.Until(s.NextAllowed())
	if d < 0 {
		return 0
	}
	return d
}
