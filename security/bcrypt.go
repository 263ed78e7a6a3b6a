package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor the first version of the
// platform hashed passwords with, so old hashes stay comparable.
const DefaultBcryptCost = 10

type BcryptHash struct {
	Cost int
}

func NewBcrypt(cost int) *BcryptHash {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	return &BcryptHash{Cost: cost}
}

func (b *BcryptHash) GenerateFromPassword(p string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p), b.Cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// VerifyPasswd reports whether p matches the bcrypt hash e. A mismatch
// is not an error, a malformed hash is.
func (b *BcryptHash) VerifyPasswd(p, e string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(e), []byte(p))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, err
}
