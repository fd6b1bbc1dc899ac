// Package flow implements the FitGate authentication flow: credential
// verification, brute-force lockout, and the login/authenticate/logout
// orchestration consumed by the HTTP layer.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitgate/fitgate/core/audit"
	"github.com/fitgate/fitgate/core/domain"
	"github.com/fitgate/fitgate/core/identity"
	"github.com/fitgate/fitgate/core/session"
	"go.uber.org/zap"
)

// Authenticator orchestrates login, request authentication, and logout.
// Rejections are returned as *AuthError values; only store faults
// propagate as plain errors.
type Authenticator struct {
	identities domain.IdentityStore
	sessions   *session.Manager
	hasher     domain.Hasher
	audit      audit.Store
	limiter    RateLimiter
	limit      int
	window     time.Duration
	now        func() time.Time
	log        *zap.Logger
}

func NewAuthenticator(identities domain.IdentityStore, sessions *session.Manager) *Authenticator {
	return &Authenticator{
		identities: identities,
		sessions:   sessions,
		hasher:     NewBcryptHasher(0),
		now:        time.Now,
		log:        zap.NewNop(),
	}
}

// SetAuditStore attaches a best-effort audit trail.
func (a *Authenticator) SetAuditStore(store audit.Store) { a.audit = store }

// SetRateLimiter attaches a pre-auth limiter keyed by username.
func (a *Authenticator) SetRateLimiter(limiter RateLimiter, limit int, window time.Duration) {
	a.limiter = limiter
	a.limit = limit
	a.window = window
}

// SetHasher overrides the hasher used for legacy credential upgrades.
func (a *Authenticator) SetHasher(h domain.Hasher) {
	if h != nil {
		a.hasher = h
	}
}

// SetLogger attaches a structured logger.
func (a *Authenticator) SetLogger(log *zap.Logger) {
	if log != nil {
		a.log = log
	}
}

// SetClock overrides the time source. Tests only.
func (a *Authenticator) SetClock(now func() time.Time) { a.now = now }

// Login verifies the submitted credential and mints a bearer token.
//
// Ordering: lock check first, so an attempt against a locked account
// neither consumes nor extends the lock; then verification; then either
// a single atomic failure increment (plus a lock write when the
// threshold is crossed) or a lockout reset and token issue.
func (a *Authenticator) Login(ctx context.Context, username, password, role string) (*domain.Token, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingInput
	}
	if role == "" {
		role = identity.RoleMember
	}

	if err := a.allow(ctx, username); err != nil {
		return nil, err
	}

	ident, err := a.identities.FindByUsername(ctx, username, role)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown usernames reject with the same message as a
			// wrong password so accounts cannot be enumerated.
			a.record(ctx, audit.NewEvent(audit.TypeLoginFailure, 0, username,
				audit.StatusFailure, "unknown username"))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("flow: load identity: %w", err)
	}

	if ident.Disabled {
		a.record(ctx, audit.NewEvent(audit.TypeLoginFailure, ident.ID, username,
			audit.StatusBlocked, "account disabled"))
		return nil, ErrAccountDisabled
	}

	now := a.now()
	if Locked(ident.Lockout, now) {
		a.record(ctx, audit.NewEvent(audit.TypeLoginFailure, ident.ID, username,
			audit.StatusBlocked, "account locked"))
		return nil, ErrAccountLocked
	}

	if !Verify(password, ident.Credential) {
		return nil, a.recordFailure(ctx, ident, now)
	}

	if err := a.identities.ClearLockout(ctx, ident.ID); err != nil {
		return nil, fmt.Errorf("flow: clear lockout: %w", err)
	}

	a.maybeUpgradeLegacy(ctx, ident, password)

	tok, err := a.sessions.Issue(ctx, ident.ID, role)
	if err != nil {
		return nil, err
	}

	a.record(ctx, audit.NewEvent(audit.TypeLoginSuccess, ident.ID, username,
		audit.StatusSuccess, "login accepted"))
	return tok, nil
}

// Authenticate resolves a bearer token to its identity. A missing,
// unknown, or expired token all surface as ErrLoginRequired.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*identity.Identity, error) {
	tok, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrTokenNotFound) || errors.Is(err, session.ErrTokenExpired) {
			return nil, ErrLoginRequired
		}
		return nil, err
	}

	ident, err := a.identities.FindByID(ctx, tok.IdentityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrLoginRequired
		}
		return nil, fmt.Errorf("flow: load identity: %w", err)
	}
	return ident, nil
}

// Logout revokes the token. An unknown or expired token is a no-op.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	tok, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrTokenNotFound) || errors.Is(err, session.ErrTokenExpired) {
			return nil
		}
		return err
	}

	if err := a.sessions.Revoke(ctx, tok.IdentityID, tok.Role); err != nil {
		return err
	}

	a.record(ctx, audit.NewEvent(audit.TypeLogout, tok.IdentityID, "",
		audit.StatusSuccess, "logout"))
	return nil
}

// recordFailure applies the failure transition: one atomic counter
// increment, and a lock write when the new count crosses the threshold.
// The returned rejection distinguishes "just became locked" from an
// ordinary bad credential.
func (a *Authenticator) recordFailure(ctx context.Context, ident *identity.Identity, now time.Time) error {
	attempts, err := a.identities.IncrementFailures(ctx, ident.ID)
	if err != nil {
		return fmt.Errorf("flow: record failure: %w", err)
	}

	if ShouldLock(attempts) {
		until := LockUntil(now)
		if err := a.identities.SetLock(ctx, ident.ID, until); err != nil {
			return fmt.Errorf("flow: set lock: %w", err)
		}
		a.log.Warn("account locked after repeated failures",
			zap.Uint64("identity_id", ident.ID),
			zap.Int("failed_attempts", attempts),
			zap.Time("lock_until", until),
		)
		a.record(ctx, audit.NewEvent(audit.TypeLoginLocked, ident.ID, ident.Username,
			audit.StatusBlocked, "lockout triggered"))
		return ErrLockoutTriggered
	}

	a.record(ctx, audit.NewEvent(audit.TypeLoginFailure, ident.ID, ident.Username,
		audit.StatusFailure, "invalid credentials"))
	return ErrInvalidCredentials
}

// maybeUpgradeLegacy rehashes a legacy plaintext credential after a
// successful login, clearing the plaintext column. Best-effort: the
// login already succeeded, so a failed upgrade only logs.
func (a *Authenticator) maybeUpgradeLegacy(ctx context.Context, ident *identity.Identity, password string) {
	if ident.Credential.Kind() != identity.CredentialLegacy {
		return
	}

	hash, err := a.hasher.Hash(password)
	if err == nil {
		err = a.identities.UpdateCredential(ctx, ident.ID, identity.HashedCredential(hash))
	}
	if err != nil {
		a.log.Warn("legacy credential upgrade failed",
			zap.Uint64("identity_id", ident.ID),
			zap.Error(err),
		)
		return
	}
	a.log.Info("legacy credential upgraded to bcrypt",
		zap.Uint64("identity_id", ident.ID),
	)
}

// allow consults the optional pre-auth rate limiter. Limiter faults fail
// open: losing throttling is preferable to losing logins, and the
// lockout policy still bounds per-account guessing.
func (a *Authenticator) allow(ctx context.Context, username string) error {
	if a.limiter == nil {
		return nil
	}

	allowed, _, err := a.limiter.Allow(ctx, "login:"+username, a.limit, a.window)
	if err != nil {
		a.log.Warn("rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

func (a *Authenticator) record(ctx context.Context, event *audit.Event) {
	if a.audit == nil {
		return
	}
	if err := a.audit.SaveEvent(ctx, event); err != nil {
		a.log.Warn("audit write failed",
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}
