// Package identity defines the principal types for FitGate.
//
// An Identity is any account that can authenticate against the gym
// backend: a member, a coach, or an administrator. Different principal
// kinds live in different backing collections but share the same
// credential, lockout, and token mechanics, so the role tag and the
// source collection travel with the identity.
//
// # Credential formats
//
// Two historical credential encodings exist side by side: a bcrypt hash
// (the current format) and a plaintext secret kept only so accounts
// created before the hash migration keep authenticating. Credential is a
// tagged value rather than two nullable fields, which makes the priority
// rule (hash always wins when both are present) explicit at the call
// site:
//
//	switch cred.Kind() {
//	case identity.CredentialHashed: ...
//	case identity.CredentialLegacy: ...
//	case identity.CredentialAbsent: ...
//	}
package identity

import (
	"strings"
	"time"
)

// Role tags scoping tokens. An account may hold independent sessions per
// role.
const (
	RoleMember = "member"
	RoleCoach  = "coach"
	RoleAdmin  = "admin"
)

// Identity represents a principal capable of authenticating.
type Identity struct {
	ID          uint64    `json:"id"`
	MemberRef   string    `json:"member_ref"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Source      string    `json:"source"`
	Disabled    bool      `json:"disabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Credential Credential   `json:"-"`
	Lockout    LockoutState `json:"-"`
}

// CredentialKind tags the stored credential format.
type CredentialKind int

const (
	CredentialAbsent CredentialKind = iota
	CredentialHashed
	CredentialLegacy
)

// Credential holds a stored secret in one of the supported formats.
// The zero value is an absent credential, which rejects every submission.
type Credential struct {
	kind  CredentialKind
	hash  string
	plain string
}

// HashedCredential returns a credential backed by a bcrypt hash.
func HashedCredential(hash string) Credential {
	return Credential{kind: CredentialHashed, hash: hash}
}

// LegacyCredential returns a credential backed by a plaintext secret.
// This constructor exists only for the pre-migration format and must not
// be used for new credential kinds.
func LegacyCredential(plain string) Credential {
	return Credential{kind: CredentialLegacy, plain: plain}
}

// NoCredential returns an absent credential.
func NoCredential() Credential { return Credential{} }

// CredentialFromColumns builds a Credential from the two storage columns.
// A recognizable bcrypt hash takes priority over any legacy value, which
// lets an in-place migration proceed without a data backfill pass.
func CredentialFromColumns(hash, legacy string) Credential {
	if isBcryptHash(hash) {
		return HashedCredential(hash)
	}
	if legacy != "" {
		return LegacyCredential(legacy)
	}
	return NoCredential()
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}

func (c Credential) Kind() CredentialKind { return c.kind }

// Hash returns the bcrypt hash, or "" for non-hashed credentials.
func (c Credential) Hash() string { return c.hash }

// Legacy returns the plaintext secret, or "" for non-legacy credentials.
func (c Credential) Legacy() string { return c.plain }

// Columns returns the (hash, legacy) pair for persistence.
func (c Credential) Columns() (hash, legacy string) {
	return c.hash, c.plain
}

// LockoutState is the brute-force tracking snapshot for one identity.
// It is read and replaced atomically by the login flow; the lockout
// policy in core/flow defines the transitions.
type LockoutState struct {
	FailedAttempts int        `json:"failed_attempts"`
	LockUntil      *time.Time `json:"lock_until,omitempty"`
}
