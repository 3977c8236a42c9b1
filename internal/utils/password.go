package utils

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

// ErrWeakPassword is returned by CheckPassword for passwords that are too
// short or exceed bcrypt's 72 byte input limit.
var ErrWeakPassword = errors.New("password must be between 8 and 72 bytes")

// CheckPassword validates a plain password before hashing.
func CheckPassword(plain string) error {
	if utf8.RuneCountInString(plain) < MinPasswordLen || len(plain) > 72 {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash of plain at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the bcrypt hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
