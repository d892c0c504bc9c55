package security

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost defines the bcrypt work factor.
const bcryptCost = 12

// MinPasswordLength is the shortest password accepted for admin accounts.
const MinPasswordLength = 8

// ErrWeakPassword is returned when a password is blank or too short.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

// ValidatePassword rejects blank or short admin passwords.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(strings.TrimSpace(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
