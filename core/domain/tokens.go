package domain

import "time"

// Token is an opaque bearer credential proving a successful prior login.
// It is scoped to one (identity, role) pair; at most one row exists per
// pair at any time. The store assigns ID, which also orders rows by
// creation for the newest-wins dedup paths.
type Token struct {
	ID         uint64    `json:"-"`
	IdentityID uint64    `json:"identity_id"`
	Role       string    `json:"role"`
	Value      string    `json:"token"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"-"`
}
