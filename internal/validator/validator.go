package validator

import (
	"regexp"
	"unicode"
)

const (
	minLoginLen    = 3
	maxLoginLen    = 32
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

var loginPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

var groupPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

func IsValidLogin(login string) bool {
	if len(login) < minLoginLen || len(login) > maxLoginLen {
		return false
	}
	return loginPattern.MatchString(login)
}

// IsValidPassword requires at least one letter and one digit.
func IsValidPassword(password string) bool {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return false
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsSpace(r):
			return false
		}
	}

	return letter && digit
}

func IsValidGroup(group string) bool {
	return groupPattern.MatchString(group)
}
