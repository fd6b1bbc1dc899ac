package flow

import (
	"time"

	"github.com/fitgate/fitgate/core/identity"
)

// Brute-force lockout policy constants. These are fixed policy values,
// not per-call knobs.
const (
	// MaxFailures is the consecutive-failure count that triggers a lock.
	MaxFailures = 5

	// LockWindow is how long a triggered lock lasts.
	LockWindow = 30 * time.Minute
)

// Locked reports whether the account is inside a lock window at now.
// The boundary is inclusive: a window ending exactly at now still counts
// as locked.
func Locked(s identity.LockoutState, now time.Time) bool {
	return s.LockUntil != nil && !s.LockUntil.Before(now)
}

// OnFailure returns the state after one more failed attempt. A zero or
// missing counter is treated as 0, so the first failure always yields 1.
// The lock window, once set, is carried through unchanged; whether
// failures are recorded at all while locked is the caller's decision.
func OnFailure(s identity.LockoutState) identity.LockoutState {
	s.FailedAttempts++
	return s
}

// ShouldLock reports whether a failure count has reached the threshold.
func ShouldLock(failedAttempts int) bool {
	return failedAttempts >= MaxFailures
}

// LockUntil returns the end of a lock window opened at now.
func LockUntil(now time.Time) time.Time {
	return now.Add(LockWindow)
}

// OnSuccess returns the state after a successful authentication: the
// counter and any lock window are cleared regardless of prior history.
func OnSuccess(identity.LockoutState) identity.LockoutState {
	return identity.LockoutState{}
}
