// Package domain defines the storage contracts for the FitGate core.
//
// The contracts abstract the row store the surrounding system uses so the
// authentication flow and the token manager stay independent of GORM.
// See the ggorm package for the reference implementation.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/fitgate/fitgate/core/audit"
	"github.com/fitgate/fitgate/core/identity"
)

// ErrNotFound is returned by lookups that match no row. Implementations
// translate their driver's sentinel (e.g. gorm.ErrRecordNotFound) into
// this value before it crosses the core boundary.
var ErrNotFound = errors.New("record not found")

// Storage combines all persistence operations the core needs.
type Storage interface {
	IdentityStore
	TokenStore
	audit.Store
}

// IdentityStore persists identities together with their credential and
// lockout columns.
type IdentityStore interface {
	// CreateIdentity inserts a new identity and assigns its ID.
	CreateIdentity(ctx context.Context, ident *identity.Identity) error

	// FindByUsername loads the identity for a username within one role
	// scope. Returns ErrNotFound when no such account exists.
	FindByUsername(ctx context.Context, username, role string) (*identity.Identity, error)

	// FindByID loads an identity by its numeric id.
	FindByID(ctx context.Context, id uint64) (*identity.Identity, error)

	// UpdateCredential replaces both credential columns in one write.
	// Storing a hashed credential clears any legacy plaintext value.
	UpdateCredential(ctx context.Context, id uint64, cred identity.Credential) error

	// IncrementFailures bumps the failure counter by one in a single
	// atomic update and returns the new count. Concurrent increments may
	// under-count but must never lose a previously persisted lock.
	IncrementFailures(ctx context.Context, id uint64) (int, error)

	// SetLock opens a lock window ending at until. An existing window
	// that ends later is left untouched; a lock is never shortened.
	SetLock(ctx context.Context, id uint64, until time.Time) error

	// ClearLockout resets the failure counter and removes any lock
	// window in a single update.
	ClearLockout(ctx context.Context, id uint64) error
}

// TokenStore persists bearer token rows. Row-level dedup semantics live
// in core/session; the store only offers the primitive operations.
type TokenStore interface {
	// TokensForIdentity returns all rows for an (identity, role) pair,
	// newest first.
	TokensForIdentity(ctx context.Context, identityID uint64, role string) ([]Token, error)

	// TokensByValue returns all rows carrying the given value, newest
	// first. More than one row is a correctness anomaly the caller
	// self-heals.
	TokensByValue(ctx context.Context, value string) ([]Token, error)

	// CreateToken inserts a new token row and assigns its ID.
	CreateToken(ctx context.Context, tok *Token) error

	// UpdateToken overwrites the value and expiry of an existing row.
	UpdateToken(ctx context.Context, tok *Token) error

	// DeleteTokens removes the rows with the given ids. Missing ids are
	// not an error.
	DeleteTokens(ctx context.Context, ids ...uint64) error

	// DeleteTokensForIdentity removes all rows for an (identity, role)
	// pair. Deleting a non-existent token is a no-op.
	DeleteTokensForIdentity(ctx context.Context, identityID uint64, role string) error
}

// Hasher defines password hashing and verification.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}
