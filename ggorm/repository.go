// Package ggorm is the GORM implementation of the FitGate storage
// contracts. It maps the core types onto the row store's columns and
// keeps the lockout writes single atomic statements, so a racing login
// can under-count a failure but never unlock an account that should
// stay locked.
package ggorm

import (
	"context"
	"errors"
	"time"

	"github.com/fitgate/fitgate/core/audit"
	"github.com/fitgate/fitgate/core/domain"
	"github.com/fitgate/fitgate/core/identity"
	"gorm.io/gorm"
)

// Repository implements domain.Storage.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for callers that need raw access.
func (r *Repository) DB() *gorm.DB { return r.db }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&gormIdentity{},
		&gormAuthToken{},
		&gormAuthEvent{},
	)
}

// -- IdentityStore --

func (r *Repository) CreateIdentity(ctx context.Context, ident *identity.Identity) error {
	gi := fromCoreIdentity(ident)
	if err := r.db.WithContext(ctx).Create(gi).Error; err != nil {
		return err
	}
	*ident = *toCoreIdentity(gi)
	return nil
}

func (r *Repository) FindByUsername(ctx context.Context, username, role string) (*identity.Identity, error) {
	var gi gormIdentity
	err := r.db.WithContext(ctx).
		Where("username = ? AND role = ?", username, role).
		First(&gi).Error
	if err != nil {
		return nil, translate(err)
	}
	return toCoreIdentity(&gi), nil
}

func (r *Repository) FindByID(ctx context.Context, id uint64) (*identity.Identity, error) {
	var gi gormIdentity
	if err := r.db.WithContext(ctx).First(&gi, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return toCoreIdentity(&gi), nil
}

func (r *Repository) UpdateCredential(ctx context.Context, id uint64, cred identity.Credential) error {
	hash, legacy := cred.Columns()
	return r.db.WithContext(ctx).
		Model(&gormIdentity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":   hash,
			"legacy_password": legacy,
		}).Error
}

func (r *Repository) IncrementFailures(ctx context.Context, id uint64) (int, error) {
	err := r.db.WithContext(ctx).
		Model(&gormIdentity{}).
		Where("id = ?", id).
		UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + 1")).Error
	if err != nil {
		return 0, err
	}

	var gi gormIdentity
	err = r.db.WithContext(ctx).
		Select("failed_attempts").
		First(&gi, "id = ?", id).Error
	if err != nil {
		return 0, err
	}
	return gi.FailedAttempts, nil
}

func (r *Repository) SetLock(ctx context.Context, id uint64, until time.Time) error {
	// The guard keeps a racing writer from shortening an existing
	// window; a later lock_until always survives.
	return r.db.WithContext(ctx).
		Model(&gormIdentity{}).
		Where("id = ? AND (lock_until IS NULL OR lock_until < ?)", id, until).
		UpdateColumn("lock_until", until).Error
}

func (r *Repository) ClearLockout(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&gormIdentity{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"failed_attempts": 0,
			"lock_until":      nil,
		}).Error
}

// -- TokenStore --

func (r *Repository) TokensForIdentity(ctx context.Context, identityID uint64, role string) ([]domain.Token, error) {
	var rows []gormAuthToken
	err := r.db.WithContext(ctx).
		Where("identity_id = ? AND role = ?", identityID, role).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCoreTokens(rows), nil
}

func (r *Repository) TokensByValue(ctx context.Context, value string) ([]domain.Token, error) {
	var rows []gormAuthToken
	err := r.db.WithContext(ctx).
		Where("value = ?", value).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toCoreTokens(rows), nil
}

func (r *Repository) CreateToken(ctx context.Context, tok *domain.Token) error {
	gt := fromCoreToken(tok)
	if err := r.db.WithContext(ctx).Create(gt).Error; err != nil {
		return err
	}
	*tok = toCoreToken(gt)
	return nil
}

func (r *Repository) UpdateToken(ctx context.Context, tok *domain.Token) error {
	return r.db.WithContext(ctx).
		Model(&gormAuthToken{}).
		Where("id = ?", tok.ID).
		Updates(map[string]any{
			"value":      tok.Value,
			"expires_at": tok.ExpiresAt,
		}).Error
}

func (r *Repository) DeleteTokens(ctx context.Context, ids ...uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&gormAuthToken{}, "id IN ?", ids).Error
}

func (r *Repository) DeleteTokensForIdentity(ctx context.Context, identityID uint64, role string) error {
	return r.db.WithContext(ctx).
		Delete(&gormAuthToken{}, "identity_id = ? AND role = ?", identityID, role).Error
}

// -- audit.Store --

func (r *Repository) SaveEvent(ctx context.Context, event *audit.Event) error {
	return r.db.WithContext(ctx).Create(fromCoreEvent(event)).Error
}

func toCoreTokens(rows []gormAuthToken) []domain.Token {
	out := make([]domain.Token, 0, len(rows))
	for i := range rows {
		out = append(out, toCoreToken(&rows[i]))
	}
	return out
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
