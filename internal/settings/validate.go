package settings

import (
	"net/mail"
	"strings"
	"unicode"

	dErrors "chainsync/pkg/domain-errors"
)

const minPasswordLength = 8

// Validate checks the store profile's contact fields.
func (p StoreProfile) Validate() error {
	if strings.TrimSpace(p.StoreName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "store_name is required")
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "email is not a valid address")
		}
	}
	if p.Phone != "" && !validPhone(p.Phone) {
		return dErrors.New(dErrors.CodeInvalidInput, "phone contains invalid characters")
	}
	return nil
}

// Validate enforces the password-change policy: confirmation must match and
// the new secret must meet the strength floor.
func (c CredentialChange) Validate() error {
	if c.CurrentPassword == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "current_password is required")
	}
	if c.NewPassword == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "new_password is required")
	}
	if c.NewPassword != c.ConfirmPassword {
		return dErrors.New(dErrors.CodeInvalidInput, "new_password and confirm_password do not match")
	}
	if len(c.NewPassword) < minPasswordLength {
		return dErrors.New(dErrors.CodeInvalidInput, "new_password must be at least 8 characters")
	}
	return nil
}

// validPhone accepts digits, spaces, and common separators.
func validPhone(s string) bool {
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
		case r == ' ' || r == '-' || r == '+' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return true
}
