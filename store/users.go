package store

import (
	"context"
	"errors"
	"fmt"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"
	"bitwise74/course-api/util"

	"gorm.io/gorm"
)

// Users is the credential store. Email equality is exact, as stored.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Create persists a new unverified user. A taken email yields
// apperr.DuplicateEmail, enforced by the unique index on email.
func (s *Users) Create(ctx context.Context, name, email, passwordHash string) (*model.User, error) {
	id, err := util.NewUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID, %w", err)
	}

	u := &model.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.DuplicateEmail
		}

		return nil, err
	}

	return u, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.first(ctx, "email = ?", email)
}

func (s *Users) FindByID(ctx context.Context, id string) (*model.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *Users) first(ctx context.Context, query string, arg string) (*model.User, error) {
	var u model.User

	err := s.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &u, nil
}

// EmailTaken is a cheap existence check run before hashing a password
func (s *Users) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64

	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Count(&n).
		Error

	return n > 0, err
}

// MarkVerified is idempotent
func (s *Users) MarkVerified(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", email).
		Update("verified", true).
		Error
}

// Update changes the name and/or password hash. Empty values are left alone.
func (s *Users) Update(ctx context.Context, id, name, passwordHash string) error {
	updates := map[string]any{}
	if name != "" {
		updates["name"] = name
	}
	if passwordHash != "" {
		updates["password_hash"] = passwordHash
	}

	if len(updates) == 0 {
		return nil
	}

	r := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		Updates(updates)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a user together with everything keyed by their ID
func (s *Users) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&model.SessionToken{},
			&model.Enrollment{},
			&model.VideoProgress{},
			&model.QuizAttempt{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", id).Delete(&model.User{}).Error
	})
}
