package model

import "time"

type CodePurpose string

const (
	PurposeRegistration CodePurpose = "registration"
	PurposeLogin        CodePurpose = "login"
)

// VerificationCode is a one-time numeric code sent by email. It is
// scoped to an email address rather than a user, since during
// registration the user might not be usable yet.
type VerificationCode struct {
	ID        uint        `gorm:"primaryKey;autoIncrement"`
	Email     string      `gorm:"index:idx_code_lookup;not null"`
	Code      string      `gorm:"index:idx_code_lookup;not null"`
	Purpose   CodePurpose `gorm:"index:idx_code_lookup;not null"`
	CreatedAt time.Time
	ExpiresAt int64 `gorm:"index;not null"` // unix milliseconds
}
