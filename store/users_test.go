package store

import (
	"context"
	"testing"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersCreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t))

	u, err := users.Create(ctx, "Ada", "ada@example.com", "hash")
	require.NoError(t, err)
	assert.Len(t, u.ID, 16)
	assert.False(t, u.Verified)

	byEmail, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	_, err = users.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUsersDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t))

	_, err := users.Create(ctx, "Ada", "ada@example.com", "hash")
	require.NoError(t, err)

	_, err = users.Create(ctx, "Other Ada", "ada@example.com", "hash2")
	assert.ErrorIs(t, err, apperr.DuplicateEmail)

	taken, err := users.EmailTaken(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUsersMarkVerifiedIdempotent(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t))

	_, err := users.Create(ctx, "Ada", "ada@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, users.MarkVerified(ctx, "ada@example.com"))
	require.NoError(t, users.MarkVerified(ctx, "ada@example.com"))

	u, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, u.Verified)
}

func TestUsersUpdate(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t))

	u, err := users.Create(ctx, "Ada", "ada@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, users.Update(ctx, u.ID, "Ada Lovelace", ""))

	got, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, "hash", got.PasswordHash)

	assert.ErrorIs(t, users.Update(ctx, "missing", "x", ""), ErrNotFound)
}

func TestUsersDeleteCascades(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	users := NewUsers(d)

	u, err := users.Create(ctx, "Ada", "ada@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, d.Create(&model.SessionToken{UserID: u.ID, Token: "t", ExpiresAt: 1}).Error)
	require.NoError(t, d.Create(&model.Enrollment{UserID: u.ID, CourseID: "c"}).Error)

	require.NoError(t, users.Delete(ctx, u.ID))

	_, err = users.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var n int64
	require.NoError(t, d.Model(&model.SessionToken{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, d.Model(&model.Enrollment{}).Where("user_id = ?", u.ID).Count(&n).Error)
	assert.Zero(t, n)
}
