package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 6
)

var (
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// IsValidEmail applies the loose address check used for contact and admin emails:
// one "@", a dot in the domain part, no whitespace.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail trims and lowercases an address for storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUsername validates username format.
// Rules: 3-30 characters of letters, numbers, "_", "." or "-", starting with a letter or number.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return apperr.Invalid("username", "Username must be at least 3 characters")
	}

	if len(username) > MaxUsernameLength {
		return apperr.Invalid("username", "Username must be at most 30 characters")
	}

	if !usernameRegex.MatchString(username) {
		return apperr.Invalid("username", "Username can only contain letters, numbers, underscores, dots and hyphens")
	}

	first, _ := utf8.DecodeRuneInString(username)
	if !unicode.IsLetter(first) && !unicode.IsNumber(first) {
		return apperr.Invalid("username", "Username must start with a letter or number")
	}

	return nil
}

// ValidatePassword enforces the minimum password length for new passwords.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperr.Invalid("password", "Password must be at least 6 characters long")
	}
	return nil
}
