package service

import (
	"context"
	"errors"

	"bitwise74/course-api/apperr"
	"bitwise74/course-api/model"
	"bitwise74/course-api/store"

	"go.uber.org/zap"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, id string) error
}

type CodeLedger interface {
	Issue(ctx context.Context, email string, purpose model.CodePurpose) (string, error)
	Consume(ctx context.Context, email, code string, purpose model.CodePurpose) (bool, error)
	Revoke(ctx context.Context, email, code string, purpose model.CodePurpose) error
}

type SessionLedger interface {
	Issue(ctx context.Context, userID string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type Hasher interface {
	GenerateFromPassword(password string) (string, error)
	VerifyPasswd(password, hash string) (bool, error)
}

// Auth drives registration and the two step login. Every error it
// returns is either an *apperr.Error or an unexpected failure that the
// caller should report as apperr.ServerError.
type Auth struct {
	users    UserStore
	codes    CodeLedger
	sessions SessionLedger
	hasher   Hasher
	mailer   Mailer
}

func NewAuth(users UserStore, codes CodeLedger, sessions SessionLedger, hasher Hasher, mailer Mailer) *Auth {
	return &Auth{
		users:    users,
		codes:    codes,
		sessions: sessions,
		hasher:   hasher,
		mailer:   mailer,
	}
}

// Register creates an unverified account and mails a registration code.
// If the mail can't be delivered the account and the code are removed
// again so the email can be reused.
func (a *Auth) Register(ctx context.Context, name, email, password string) error {
	taken, err := a.users.EmailTaken(ctx, email)
	if err != nil {
		return err
	}

	if taken {
		return apperr.DuplicateEmail
	}

	hash, err := a.hasher.GenerateFromPassword(password)
	if err != nil {
		return err
	}

	// The unique index still catches two registrations racing past the check above
	u, err := a.users.Create(ctx, name, email, hash)
	if err != nil {
		return err
	}

	code, err := a.codes.Issue(ctx, email, model.PurposeRegistration)
	if err != nil {
		a.rollbackRegistration(ctx, u, "")
		return err
	}

	if err := a.mailer.Send(ctx, email, RegistrationMail(name, code)); err != nil {
		zap.L().Warn("Failed to deliver registration email", zap.String("email", email), zap.Error(err))

		a.rollbackRegistration(ctx, u, code)
		return apperr.EmailDeliveryFailed
	}

	return nil
}

func (a *Auth) rollbackRegistration(ctx context.Context, u *model.User, code string) {
	// The request may already be cancelled, the cleanup must still run
	ctx = context.WithoutCancel(ctx)

	if err := a.users.Delete(ctx, u.ID); err != nil {
		zap.L().Error("Failed to roll back registered user", zap.String("userID", u.ID), zap.Error(err))
	}

	if code == "" {
		return
	}

	if err := a.codes.Revoke(ctx, u.Email, code, model.PurposeRegistration); err != nil {
		zap.L().Error("Failed to roll back registration code", zap.String("email", u.Email), zap.Error(err))
	}
}

// VerifyEmail consumes a registration code and marks the account verified
func (a *Auth) VerifyEmail(ctx context.Context, email, code string) error {
	ok, err := a.codes.Consume(ctx, email, code, model.PurposeRegistration)
	if err != nil {
		return err
	}

	if !ok {
		return apperr.InvalidOrExpiredCode
	}

	return a.users.MarkVerified(ctx, email)
}

// Login checks the password and mails a login code. The password is
// checked first so an unknown caller can't learn whether an account is
// verified.
func (a *Auth) Login(ctx context.Context, email, password string) error {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.InvalidCredentials
		}

		return err
	}

	ok, err := a.hasher.VerifyPasswd(password, u.PasswordHash)
	if err != nil {
		return err
	}

	if !ok {
		return apperr.InvalidCredentials
	}

	if !u.Verified {
		return apperr.UnverifiedAccount
	}

	code, err := a.codes.Issue(ctx, email, model.PurposeLogin)
	if err != nil {
		return err
	}

	if err := a.mailer.Send(ctx, email, LoginMail(u.Name, code)); err != nil {
		zap.L().Warn("Failed to deliver login email", zap.String("email", email), zap.Error(err))

		if err := a.codes.Revoke(context.WithoutCancel(ctx), email, code, model.PurposeLogin); err != nil {
			zap.L().Error("Failed to revoke undelivered login code", zap.String("email", email), zap.Error(err))
		}

		return apperr.EmailDeliveryFailed
	}

	return nil
}

// VerifyLogin trades a login code for a session token. Any token the
// user held before stops working.
func (a *Auth) VerifyLogin(ctx context.Context, email, code string) (string, *model.PublicUser, error) {
	ok, err := a.codes.Consume(ctx, email, code, model.PurposeLogin)
	if err != nil {
		return "", nil, err
	}

	if !ok {
		return "", nil, apperr.InvalidOrExpiredCode
	}

	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Account deleted between login and verification
			return "", nil, apperr.InvalidOrExpiredCode
		}

		return "", nil, err
	}

	token, err := a.sessions.Issue(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}

	pub := u.Public()
	return token, &pub, nil
}

// Logout revokes the token. Revoking a token that is already gone is fine.
func (a *Auth) Logout(ctx context.Context, token string) error {
	return a.sessions.Revoke(ctx, token)
}
