package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"
	"bitwise74/course-api/security"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultSessionTTL = 24 * time.Hour

type SessionLedgerConfig struct {
	TTL time.Duration
	Now Clock
}

// SessionLedger keeps at most one live bearer token per user
type SessionLedger struct {
	db     *gorm.DB
	signer *security.SessionSigner
	ttl    time.Duration
	now    Clock
}

func NewSessionLedger(db *gorm.DB, signer *security.SessionSigner, cfg SessionLedgerConfig) *SessionLedger {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}

	return &SessionLedger{
		db:     db,
		signer: signer,
		ttl:    cfg.TTL,
		now:    orNow(cfg.Now),
	}
}

// Issue drops every token the user holds and then stores a new one.
// The two statements are not wrapped in a transaction: a logout racing
// a fresh login may revoke the newer token, which is accepted.
func (l *SessionLedger) Issue(ctx context.Context, userID string) (string, error) {
	now := l.now()

	token, err := l.signer.Sign(userID, now, l.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token, %w", err)
	}

	if err := l.RevokeAll(ctx, userID); err != nil {
		return "", fmt.Errorf("failed to drop previous sessions, %w", err)
	}

	err = l.db.WithContext(ctx).Create(&model.SessionToken{
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		LastUsed:  now,
		ExpiresAt: now.Add(l.ttl).UnixMilli(),
	}).Error
	if err != nil {
		return "", err
	}

	return token, nil
}

// Validate returns the live record behind token. It fails with
// apperr.SessionExpired for tokens past their TTL and apperr.InvalidToken
// for anything that never matched a record. The last-used timestamp is
// touched on a best-effort basis.
func (l *SessionLedger) Validate(ctx context.Context, token string) (*model.SessionToken, error) {
	now := l.now()

	claims, err := l.signer.Parse(token, now)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, apperr.SessionExpired
		}

		return nil, apperr.InvalidToken
	}

	var rec model.SessionToken

	err = l.db.WithContext(ctx).Where("token = ?", token).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidToken
		}

		return nil, err
	}

	if rec.UserID != claims.Subject {
		return nil, apperr.InvalidToken
	}

	if rec.ExpiresAt <= now.UnixMilli() {
		return nil, apperr.SessionExpired
	}

	err = l.db.WithContext(ctx).
		Model(&model.SessionToken{}).
		Where("id = ?", rec.ID).
		Update("last_used", now).
		Error
	if err != nil {
		zap.L().Warn("Failed to touch session token", zap.String("userID", rec.UserID), zap.Error(err))
	} else {
		rec.LastUsed = now
	}

	return &rec, nil
}

// Revoke is a no-op when the token doesn't exist
func (l *SessionLedger) Revoke(ctx context.Context, token string) error {
	return l.db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&model.SessionToken{}).
		Error
}

func (l *SessionLedger) RevokeAll(ctx context.Context, userID string) error {
	return l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.SessionToken{}).
		Error
}

func (l *SessionLedger) Sweep(ctx context.Context) (int64, error) {
	r := l.db.WithContext(ctx).
		Where("expires_at <= ?", l.now().UnixMilli()).
		Delete(&model.SessionToken{})

	return r.RowsAffected, r.Error
}

func (l *SessionLedger) Name() string {
	return "session_tokens"
}
