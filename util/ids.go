package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewUserID returns a 16 character letters-only ID
func NewUserID() (string, error) {
	return gonanoid.Generate(charset, 16)
}

// NewRequestID is only used for log correlation, so a panic on a broken
// random source is acceptable.
func NewRequestID() string {
	return gonanoid.MustGenerate(charset, 10)
}
