package validators

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNameEmpty   = errors.New("no name provided")
	ErrNameTooLong = errors.New("name is too long")
	ErrNameInvalid = errors.New("name contains invalid characters")
)

func NameValidator(n string) error {
	if strings.TrimSpace(n) == "" {
		return ErrNameEmpty
	}

	if utf8.RuneCountInString(n) > 100 {
		return ErrNameTooLong
	}

	for _, r := range n {
		if unicode.IsControl(r) {
			return ErrNameInvalid
		}
	}

	return nil
}
