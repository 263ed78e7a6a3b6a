package security

import (
	"errors"
	"fmt"
	"time"

	"bitwise74/course-api/util"

	"github.com/golang-jwt/jwt/v5"
)

// Size in bytes of the random token ID. 32 bytes keeps two tokens
// issued for the same user in the same second apart.
const tokenIDSize = 32

var (
	ErrTokenInvalid = errors.New("session token invalid")
	ErrTokenExpired = errors.New("session token expired")
)

// SessionSigner mints and checks the bearer tokens handed out on login.
// A token is an HS256 JWT whose jti is random, so it can't be derived
// from the user ID or the issue time.
type SessionSigner struct {
	secret []byte
}

func NewSessionSigner(secret string) (*SessionSigner, error) {
	if secret == "" {
		return nil, errors.New("no jwt secret provided")
	}

	return &SessionSigner{secret: []byte(secret)}, nil
}

func (s *SessionSigner) Sign(userID string, issuedAt time.Time, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("no user ID provided")
	}

	jti, err := util.GenerateToken(tokenIDSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate token id, %w", err)
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	})

	return t.SignedString(s.secret)
}

// Parse verifies the signature and expiry of token as seen at now.
// It only ever returns ErrTokenExpired or ErrTokenInvalid on failure.
func (s *SessionSigner) Parse(token string, now time.Time) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &claims, nil
}
