// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Verified     bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Sessions    []SessionToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Enrollments []Enrollment   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// PublicUser is the only projection of a user that leaves the server.
// It never carries the password hash.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
