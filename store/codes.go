package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/course-api/model"
	"bitwise74/course-api/security"

	"gorm.io/gorm"
)

const (
	DefaultCodeTTL    = 600 * time.Second
	DefaultCodeDigits = 6
)

type CodeLedgerConfig struct {
	TTL    time.Duration
	Digits int
	Now    Clock
}

// CodeLedger holds the short-lived verification codes sent by email.
// Several codes for the same email and purpose may be live at once,
// each is matched on its own.
type CodeLedger struct {
	db     *gorm.DB
	ttl    time.Duration
	digits int
	now    Clock
}

func NewCodeLedger(db *gorm.DB, cfg CodeLedgerConfig) *CodeLedger {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCodeTTL
	}
	if cfg.Digits == 0 {
		cfg.Digits = DefaultCodeDigits
	}

	return &CodeLedger{
		db:     db,
		ttl:    cfg.TTL,
		digits: cfg.Digits,
		now:    orNow(cfg.Now),
	}
}

// Issue stores a fresh code and returns it for delivery
func (l *CodeLedger) Issue(ctx context.Context, email string, purpose model.CodePurpose) (string, error) {
	code, err := security.NewNumericCode(l.digits)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code, %w", err)
	}

	now := l.now()

	err = l.db.WithContext(ctx).Create(&model.VerificationCode{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(l.ttl).UnixMilli(),
	}).Error
	if err != nil {
		return "", err
	}

	return code, nil
}

// Consume deletes the live code matching all three fields and reports
// whether there was one. The lookup re-checks expiry itself, so a code
// the sweeper hasn't reaped yet still fails. Of two concurrent calls
// for the same code only the one whose delete hits a row wins.
func (l *CodeLedger) Consume(ctx context.Context, email, code string, purpose model.CodePurpose) (bool, error) {
	var rec model.VerificationCode

	err := l.db.WithContext(ctx).
		Where("email = ? AND code = ? AND purpose = ? AND expires_at > ?",
			email, code, purpose, l.now().UnixMilli()).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	r := l.db.WithContext(ctx).Delete(&model.VerificationCode{}, rec.ID)
	if r.Error != nil {
		return false, r.Error
	}

	return r.RowsAffected == 1, nil
}

// Revoke deletes a specific code whether or not it expired. No-op when absent.
func (l *CodeLedger) Revoke(ctx context.Context, email, code string, purpose model.CodePurpose) error {
	return l.db.WithContext(ctx).
		Where("email = ? AND code = ? AND purpose = ?", email, code, purpose).
		Delete(&model.VerificationCode{}).
		Error
}

// Sweep deletes every expired code and returns how many were removed
func (l *CodeLedger) Sweep(ctx context.Context) (int64, error) {
	r := l.db.WithContext(ctx).
		Where("expires_at <= ?", l.now().UnixMilli()).
		Delete(&model.VerificationCode{})

	return r.RowsAffected, r.Error
}

func (l *CodeLedger) Name() string {
	return "verification_codes"
}
