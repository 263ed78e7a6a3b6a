package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/db"
	"bitwise74/course-api/model"
	"bitwise74/course-api/security"
	"bitwise74/course-api/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	to   string
	mail Mail
	code string
}

// fakeMailer records every message and captures the code it carries
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, to string, mail Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return errors.New("smtp unavailable")
	}

	m.sent = append(m.sent, sentMail{to: to, mail: mail, code: extractCode(mail.Body)})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	require.NotEmpty(t, m.sent, "no mail was sent")
	return m.sent[len(m.sent)-1]
}

var codeRe = regexp.MustCompile(`<b>(\d+)</b>`)

func extractCode(body string) string {
	m := codeRe.FindStringSubmatch(body)
	if m == nil {
		return ""
	}

	return m[1]
}

type authFixture struct {
	auth     *Auth
	db       *gorm.DB
	users    *store.Users
	codes    *store.CodeLedger
	sessions *store.SessionLedger
	mailer   *fakeMailer
}

func newAuthFixture(t *testing.T) *authFixture {
	d, err := db.New("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	signer, err := security.NewSessionSigner("test-secret")
	require.NoError(t, err)

	f := &authFixture{
		db:       d,
		users:    store.NewUsers(d),
		codes:    store.NewCodeLedger(d, store.CodeLedgerConfig{}),
		sessions: store.NewSessionLedger(d, signer, store.SessionLedgerConfig{}),
		mailer:   &fakeMailer{},
	}

	f.auth = NewAuth(f.users, f.codes, f.sessions, security.NewBcrypt(4), f.mailer)
	return f
}

func (f *authFixture) countCodes(t *testing.T, email string) int64 {
	var n int64
	require.NoError(t, f.db.Model(&model.VerificationCode{}).Where("email = ?", email).Count(&n).Error)
	return n
}

// registerAndLogin walks a user through the whole flow and returns the
// session token
func (f *authFixture) registerAndLogin(t *testing.T, email string) (string, *model.PublicUser) {
	ctx := context.Background()

	require.NoError(t, f.auth.Register(ctx, "Ann", email, "pw123456"))
	require.NoError(t, f.auth.VerifyEmail(ctx, email, f.mailer.last(t).code))
	require.NoError(t, f.auth.Login(ctx, email, "pw123456"))

	token, user, err := f.auth.VerifyLogin(ctx, email, f.mailer.last(t).code)
	require.NoError(t, err)

	return token, user
}

func TestRegisterVerifyEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Register(ctx, "Ann", "ann@x.com", "pw123456"))

	m := f.mailer.last(t)
	assert.Equal(t, "ann@x.com", m.to)
	assert.Equal(t, "Verify your email", m.mail.Subject)
	require.Len(t, m.code, 6)

	u, err := f.users.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.False(t, u.Verified)
	assert.NotEqual(t, "pw123456", u.PasswordHash)

	require.NoError(t, f.auth.VerifyEmail(ctx, "ann@x.com", m.code))

	u, err = f.users.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.True(t, u.Verified)

	// the code is gone after its first use
	assert.ErrorIs(t, f.auth.VerifyEmail(ctx, "ann@x.com", m.code), apperr.InvalidOrExpiredCode)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Register(ctx, "Ann", "ann@x.com", "pw123456"))
	assert.ErrorIs(t, f.auth.Register(ctx, "Ann 2", "ann@x.com", "pw123456"), apperr.DuplicateEmail)
}

func TestRegisterMailFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.mailer.fail = true

	err := f.auth.Register(ctx, "Ann", "ann@x.com", "pw123")
	assert.ErrorIs(t, err, apperr.EmailDeliveryFailed)

	_, err = f.users.FindByEmail(ctx, "ann@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Zero(t, f.countCodes(t, "ann@x.com"))

	f.mailer.fail = false
	require.NoError(t, f.auth.Register(ctx, "Ann", "ann@x.com", "pw123"))
	assert.Equal(t, int64(1), f.countCodes(t, "ann@x.com"))
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Register(ctx, "Ann", "ann@x.com", "pw123456"))

	assert.ErrorIs(t, f.auth.Login(ctx, "nobody@x.com", "pw123456"), apperr.InvalidCredentials)
	assert.ErrorIs(t, f.auth.Login(ctx, "ann@x.com", "wrong"), apperr.InvalidCredentials)
	assert.ErrorIs(t, f.auth.Login(ctx, "ann@x.com", "pw123456"), apperr.UnverifiedAccount)
}

func TestLoginMailFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Register(ctx, "Ann", "ann@x.com", "pw123456"))
	require.NoError(t, f.auth.VerifyEmail(ctx, "ann@x.com", f.mailer.last(t).code))

	f.mailer.fail = true
	assert.ErrorIs(t, f.auth.Login(ctx, "ann@x.com", "pw123456"), apperr.EmailDeliveryFailed)
	assert.Zero(t, f.countCodes(t, "ann@x.com"))
}

func TestVerifyLoginIssuesSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	token, user := f.registerAndLogin(t, "ann@x.com")
	assert.NotEmpty(t, token)
	assert.Equal(t, "ann@x.com", user.Email)
	assert.Equal(t, "Ann", user.Name)

	rec, err := f.sessions.Validate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, rec.UserID)
}

func TestVerifyLoginUnknownCode(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Register(ctx, "Ann", "ann@x.com", "pw123456"))
	regCode := f.mailer.last(t).code
	require.NoError(t, f.auth.VerifyEmail(ctx, "ann@x.com", regCode))

	_, _, err := f.auth.VerifyLogin(ctx, "ann@x.com", "000000")
	assert.ErrorIs(t, err, apperr.InvalidOrExpiredCode)

	// a registration code can't be used to log in
	require.NoError(t, f.auth.Login(ctx, "ann@x.com", "pw123456"))
	loginCode := f.mailer.last(t).code

	_, _, err = f.auth.VerifyLogin(ctx, "bob@x.com", loginCode)
	assert.ErrorIs(t, err, apperr.InvalidOrExpiredCode)

	var n int64
	require.NoError(t, f.db.Model(&model.SessionToken{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSecondLoginSupersedesFirst(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	first, _ := f.registerAndLogin(t, "ann@x.com")

	require.NoError(t, f.auth.Login(ctx, "ann@x.com", "pw123456"))
	second, _, err := f.auth.VerifyLogin(ctx, "ann@x.com", f.mailer.last(t).code)
	require.NoError(t, err)

	_, err = f.sessions.Validate(ctx, first)
	assert.ErrorIs(t, err, apperr.InvalidToken)

	_, err = f.sessions.Validate(ctx, second)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	token, _ := f.registerAndLogin(t, "ann@x.com")

	require.NoError(t, f.auth.Logout(ctx, token))
	require.NoError(t, f.auth.Logout(ctx, token))

	_, err := f.sessions.Validate(ctx, token)
	assert.ErrorIs(t, err, apperr.InvalidToken)
}
