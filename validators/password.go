package validators

import "errors"

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
)

// bcrypt only looks at the first 72 bytes, anything longer would be
// silently truncated.
const maxPasswordBytes = 72

func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < 8 {
		return ErrPasswordTooShort
	}

	if len(p) > maxPasswordBytes {
		return ErrPasswordTooLong
	}

	return nil
}
