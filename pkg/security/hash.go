// Package security contains everything related to the security of user data
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

type PasswordHash struct {
	Cost int
}

func NewPasswordHash() *PasswordHash {
	return &PasswordHash{
		Cost: 10,
	}
}

// GenerateFromPassword hashes p with bcrypt. This is CPU-bound, so callers
// must only invoke it on registration or an explicit password change, never
// on ordinary record saves.
func (h *PasswordHash) GenerateFromPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), h.Cost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// VerifyPasswd compares a plaintext password p with the stored hash e.
// A mismatch is not an error, only a false result.
func (h *PasswordHash) VerifyPasswd(p, e string) (ok bool, err error) {
	err = bcrypt.CompareHashAndPassword([]byte(e), []byte(p))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
