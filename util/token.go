// Package util contains any functions used across the application that don't match
// any other package
package util

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// GenerateToken returns n random bytes hex encoded, so the result is
// 2n characters long.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("token size must be bigger than 0")
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
