package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	MinCodeDigits = 6
	MaxCodeDigits = 10
)

var ErrCodeDigits = errors.New("verification code must have between 6 and 10 digits")

// NewNumericCode returns a uniformly random string of n decimal digits.
// Leading zeros are kept.
func NewNumericCode(n int) (string, error) {
	if n < MinCodeDigits || n > MaxCodeDigits {
		return "", ErrCodeDigits
	}

	var b strings.Builder
	b.Grow(n)

	ten := big.NewInt(10)
	for range n {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}

		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}
