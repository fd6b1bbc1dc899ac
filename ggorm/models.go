package ggorm

import (
	"time"

	"github.com/fitgate/fitgate/core/audit"
	"github.com/fitgate/fitgate/core/domain"
	"github.com/fitgate/fitgate/core/identity"
)

type gormIdentity struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	MemberRef      string `gorm:"size:36;index"`
	Username       string `gorm:"size:191;uniqueIndex:idx_identities_username_role"`
	Role           string `gorm:"size:32;uniqueIndex:idx_identities_username_role"`
	DisplayName    string
	Source         string `gorm:"size:64"`
	Disabled       bool
	PasswordHash   string
	LegacyPassword string
	FailedAttempts int
	LockUntil      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (gormIdentity) TableName() string { return "identities" }

func toCoreIdentity(gi *gormIdentity) *identity.Identity {
	if gi == nil {
		return nil
	}
	return &identity.Identity{
		ID:          gi.ID,
		MemberRef:   gi.MemberRef,
		Username:    gi.Username,
		DisplayName: gi.DisplayName,
		Role:        gi.Role,
		Source:      gi.Source,
		Disabled:    gi.Disabled,
		CreatedAt:   gi.CreatedAt,
		UpdatedAt:   gi.UpdatedAt,
		Credential:  identity.CredentialFromColumns(gi.PasswordHash, gi.LegacyPassword),
		Lockout: identity.LockoutState{
			FailedAttempts: gi.FailedAttempts,
			LockUntil:      gi.LockUntil,
		},
	}
}

func fromCoreIdentity(i *identity.Identity) *gormIdentity {
	if i == nil {
		return nil
	}
	hash, legacy := i.Credential.Columns()
	return &gormIdentity{
		ID:             i.ID,
		MemberRef:      i.MemberRef,
		Username:       i.Username,
		Role:           i.Role,
		DisplayName:    i.DisplayName,
		Source:         i.Source,
		Disabled:       i.Disabled,
		PasswordHash:   hash,
		LegacyPassword: legacy,
		FailedAttempts: i.Lockout.FailedAttempts,
		LockUntil:      i.Lockout.LockUntil,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// No unique index on (identity_id, role) yet: the dedup-on-access paths
// in core/session must be able to self-heal historical duplicate rows.
// The index lands once the duplicate backlog is confirmed empty in
// production.
type gormAuthToken struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	IdentityID uint64 `gorm:"index:idx_auth_tokens_identity"`
	Role       string `gorm:"size:32;index:idx_auth_tokens_identity"`
	Value      string `gorm:"size:64;index"`
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

func (gormAuthToken) TableName() string { return "auth_tokens" }

func toCoreToken(gt *gormAuthToken) domain.Token {
	return domain.Token{
		ID:         gt.ID,
		IdentityID: gt.IdentityID,
		Role:       gt.Role,
		Value:      gt.Value,
		ExpiresAt:  gt.ExpiresAt,
		CreatedAt:  gt.CreatedAt,
	}
}

func fromCoreToken(t *domain.Token) *gormAuthToken {
	return &gormAuthToken{
		ID:         t.ID,
		IdentityID: t.IdentityID,
		Role:       t.Role,
		Value:      t.Value,
		ExpiresAt:  t.ExpiresAt,
		CreatedAt:  t.CreatedAt,
	}
}

type gormAuthEvent struct {
	ID        string `gorm:"primaryKey;size:36"`
	Type      string `gorm:"size:64;index"`
	SubjectID uint64 `gorm:"index"`
	Username  string `gorm:"size:191"`
	Status    string `gorm:"size:16;index"`
	Message   string
	CreatedAt time.Time `gorm:"index"`
}

func (gormAuthEvent) TableName() string { return "auth_events" }

func fromCoreEvent(e *audit.Event) *gormAuthEvent {
	if e == nil {
		return nil
	}
	return &gormAuthEvent{
		ID:        e.ID,
		Type:      e.Type,
		SubjectID: e.SubjectID,
		Username:  e.Username,
		Status:    e.Status,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
}
