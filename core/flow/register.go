package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fitgate/fitgate/core/domain"
	"github.com/fitgate/fitgate/core/identity"
	"github.com/google/uuid"
)

// Registrar provisions accounts and handles the credential write paths
// that live outside the login flow (registration, password reset).
type Registrar struct {
	identities domain.IdentityStore
	hasher     domain.Hasher
}

func NewRegistrar(identities domain.IdentityStore, hasher domain.Hasher) *Registrar {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &Registrar{identities: identities, hasher: hasher}
}

// Register creates a new identity with a bcrypt credential and a fresh
// member reference. The role defaults to member.
func (r *Registrar) Register(ctx context.Context, username, password, displayName, role string) (*identity.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingInput
	}
	if role == "" {
		role = identity.RoleMember
	}

	if _, err := r.identities.FindByUsername(ctx, username, role); err == nil {
		return nil, &AuthError{Code: "username_taken", Message: "Username is already in use"}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("flow: check username: %w", err)
	}

	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("flow: hash password: %w", err)
	}

	ident := &identity.Identity{
		MemberRef:   uuid.NewString(),
		Username:    username,
		DisplayName: displayName,
		Role:        role,
		Source:      "identities",
		Credential:  identity.HashedCredential(hash),
	}
	if err := r.identities.CreateIdentity(ctx, ident); err != nil {
		return nil, fmt.Errorf("flow: create identity: %w", err)
	}
	return ident, nil
}

// ResetPassword replaces the credential with a bcrypt hash of the new
// password. Any legacy plaintext value is cleared by the same write.
func (r *Registrar) ResetPassword(ctx context.Context, id uint64, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrMissingInput
	}

	hash, err := r.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("flow: hash password: %w", err)
	}
	if err := r.identities.UpdateCredential(ctx, id, identity.HashedCredential(hash)); err != nil {
		return fmt.Errorf("flow: update credential: %w", err)
	}
	return nil
}
