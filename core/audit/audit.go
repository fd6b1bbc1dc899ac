// Package audit provides the authentication event trail for FitGate.
//
// Every login outcome, lockout, and logout produces an event. Writes are
// best-effort: a failing audit store must never fail the request that
// produced the event, so callers log and proceed.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the authentication flow.
const (
	TypeLoginSuccess = "identity.login.success"
	TypeLoginFailure = "identity.login.failure"
	TypeLoginLocked  = "identity.login.locked"
	TypeLogout       = "identity.logout"
)

// Event statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusBlocked = "blocked"
)

// Event is one structured security event record.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SubjectID uint64    `json:"subject_id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists audit events.
type Store interface {
	SaveEvent(ctx context.Context, event *Event) error
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(eventType string, subjectID uint64, username, status, message string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Username:  username,
		Status:    status,
		Message:   message,
		CreatedAt: time.Now(),
	}
}
