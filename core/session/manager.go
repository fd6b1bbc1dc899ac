// Package session manages bearer tokens for FitGate.
//
// Each (identity, role) pair holds at most one live token. Issue is
// create-or-replace, never append: refreshing a session overwrites the
// existing row in place with a fresh value and expiry. The store schema
// does not yet enforce the uniqueness, so both the write and the read
// path self-heal duplicate rows by keeping the newest and deleting the
// rest.
//
// Expiry is evaluated lazily at resolve time, never by an active sweep,
// and can be disabled entirely through SetExpiryCheck for test and
// operational flexibility.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/fitgate/fitgate/core/domain"
	"go.uber.org/zap"
)

// TokenTTL is the fixed freshness window of an issued token.
const TokenTTL = time.Hour

var (
	// ErrTokenNotFound means no row carries the presented value.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenExpired means the row exists but its window has passed.
	// Callers surface it identically to ErrTokenNotFound.
	ErrTokenExpired = errors.New("token expired")
)

// Manager implements the token lifecycle over a domain.TokenStore.
type Manager struct {
	store       domain.TokenStore
	ttl         time.Duration
	checkExpiry bool
	now         func() time.Time
	log         *zap.Logger
}

// NewManager creates a Manager with the default 1 hour TTL and expiry
// checking enabled.
func NewManager(store domain.TokenStore) *Manager {
	return &Manager{
		store:       store,
		ttl:         TokenTTL,
		checkExpiry: true,
		now:         time.Now,
		log:         zap.NewNop(),
	}
}

// SetExpiryCheck toggles expiry enforcement at resolve time. When
// disabled, Resolve rejects only on absence, never on age.
func (m *Manager) SetExpiryCheck(enabled bool) { m.checkExpiry = enabled }

// SetTTL overrides the freshness window.
func (m *Manager) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		m.ttl = ttl
	}
}

// SetLogger attaches a logger for best-effort dedup reporting.
func (m *Manager) SetLogger(log *zap.Logger) {
	if log != nil {
		m.log = log
	}
}

// SetClock overrides the time source. Tests only.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

// Issue mints a token for the (identity, role) pair. If a row already
// exists its value and expiry are overwritten in place; if several exist
// the newest survives and the rest are deleted before the overwrite. The
// returned value is always freshly generated and the expiry is
// unconditionally reset to now + TTL, including on refresh.
func (m *Manager) Issue(ctx context.Context, identityID uint64, role string) (*domain.Token, error) {
	value, err := newTokenValue()
	if err != nil {
		return nil, fmt.Errorf("session: generate token: %w", err)
	}

	rows, err := m.store.TokensForIdentity(ctx, identityID, role)
	if err != nil {
		return nil, fmt.Errorf("session: load tokens: %w", err)
	}

	expiresAt := m.now().Add(m.ttl)

	if len(rows) == 0 {
		tok := &domain.Token{
			IdentityID: identityID,
			Role:       role,
			Value:      value,
			ExpiresAt:  expiresAt,
		}
		if err := m.store.CreateToken(ctx, tok); err != nil {
			return nil, fmt.Errorf("session: create token: %w", err)
		}
		return tok, nil
	}

	if len(rows) > 1 {
		// Should not happen under correct operation; keep the newest
		// and drop the strays so the invariant holds again.
		ids := make([]uint64, 0, len(rows)-1)
		for _, r := range rows[1:] {
			ids = append(ids, r.ID)
		}
		if err := m.store.DeleteTokens(ctx, ids...); err != nil {
			return nil, fmt.Errorf("session: dedup tokens: %w", err)
		}
		m.log.Warn("removed duplicate token rows",
			zap.Uint64("identity_id", identityID),
			zap.String("role", role),
			zap.Int("removed", len(ids)),
		)
	}

	tok := rows[0]
	tok.Value = value
	tok.ExpiresAt = expiresAt
	if err := m.store.UpdateToken(ctx, &tok); err != nil {
		return nil, fmt.Errorf("session: refresh token: %w", err)
	}
	return &tok, nil
}

// Resolve maps a presented token value to its row. Duplicate rows
// sharing the value are deduplicated newest-wins; the deletes are
// best-effort and never fail the read. With expiry checking enabled a
// row whose window has passed yields ErrTokenExpired, but the row itself
// is not deleted by a read.
func (m *Manager) Resolve(ctx context.Context, value string) (*domain.Token, error) {
	if value == "" {
		return nil, ErrTokenNotFound
	}

	rows, err := m.store.TokensByValue(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("session: load token: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrTokenNotFound
	}

	if len(rows) > 1 {
		ids := make([]uint64, 0, len(rows)-1)
		for _, r := range rows[1:] {
			ids = append(ids, r.ID)
		}
		if err := m.store.DeleteTokens(ctx, ids...); err != nil {
			m.log.Warn("token dedup delete failed",
				zap.Error(err),
				zap.Int("rows", len(ids)),
			)
		}
	}

	tok := rows[0]
	if m.checkExpiry && tok.ExpiresAt.Before(m.now()) {
		return nil, ErrTokenExpired
	}
	return &tok, nil
}

// Revoke deletes the token row(s) for the pair. Revoking an identity
// with no token is a no-op.
func (m *Manager) Revoke(ctx context.Context, identityID uint64, role string) error {
	if err := m.store.DeleteTokensForIdentity(ctx, identityID, role); err != nil {
		return fmt.Errorf("session: revoke: %w", err)
	}
	return nil
}

// newTokenValue returns 32 bytes from a cryptographically secure source,
// hex encoded.
func newTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
