package flow

import (
	"testing"
	"time"

	"github.com/fitgate/fitgate/core/identity"
)

func TestOnFailureCounts(t *testing.T) {
	var state identity.LockoutState
	for i := 1; i <= 7; i++ {
		state = OnFailure(state)
		if state.FailedAttempts != i {
			t.Fatalf("after %d failures FailedAttempts = %d", i, state.FailedAttempts)
		}
	}
}

func TestShouldLock(t *testing.T) {
	for k := 0; k < 10; k++ {
		want := k >= MaxFailures
		if got := ShouldLock(k); got != want {
			t.Errorf("ShouldLock(%d) = %v, want %v", k, got, want)
		}
	}
}

func TestLockedBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		lockUntil *time.Time
		want      bool
	}{
		{"no lock", nil, false},
		{"lock in future", timePtr(now.Add(time.Minute)), true},
		{"lock exactly at now", timePtr(now), true},
		{"lock elapsed", timePtr(now.Add(-time.Second)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := identity.LockoutState{LockUntil: tt.lockUntil}
			if got := Locked(state, now); got != tt.want {
				t.Errorf("Locked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLockUntilWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if got := LockUntil(now); !got.Equal(now.Add(30 * time.Minute)) {
		t.Errorf("LockUntil(now) = %v, want now+30m", got)
	}
}

func TestOnSuccessClearsEverything(t *testing.T) {
	until := time.Now().Add(time.Hour)
	state := identity.LockoutState{FailedAttempts: 4, LockUntil: &until}

	state = OnSuccess(state)
	if state.FailedAttempts != 0 {
		t.Errorf("FailedAttempts = %d after success", state.FailedAttempts)
	}
	if state.LockUntil != nil {
		t.Errorf("LockUntil = %v after success, want nil", state.LockUntil)
	}
}

// OnFailure carries an open lock window through unchanged; the policy
// does not compound lock extensions.
func TestOnFailureDoesNotTouchLockWindow(t *testing.T) {
	until := time.Now().Add(10 * time.Minute)
	state := identity.LockoutState{FailedAttempts: 5, LockUntil: &until}

	state = OnFailure(state)
	if state.LockUntil == nil || !state.LockUntil.Equal(until) {
		t.Errorf("LockUntil changed by OnFailure: %v", state.LockUntil)
	}
}

func timePtr(t time.Time) *time.Time { return &t }
