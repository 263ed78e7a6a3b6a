package model

import "time"

type SessionToken struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID    string    `gorm:"index;not null" json:"userId"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
	ExpiresAt int64     `gorm:"index;not null" json:"expiresAt"` // unix milliseconds
}
