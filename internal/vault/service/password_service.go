// Package service provides vault-related services for password verification.
// Implements Argon2id hashing so a wrong password is distinguishable from a
// corrupted vault.
package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/anonymizer/internal/errors"
)

// PasswordService hashes and verifies vault passwords.
type PasswordService interface {
	// HashPassword hashes a plain text password using Argon2id.
	HashPassword(password []byte) (string, error)

	// ComparePassword performs a constant-time comparison between a password and its hash.
	ComparePassword(password []byte, hash string) bool
}

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// HashPassword hashes a plain text password using Argon2id.
func (s *passwordService) HashPassword(password []byte) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash vault password")
	}
	return hash, nil
}

// ComparePassword performs a constant-time comparison between a password and its hash.
func (s *passwordService) ComparePassword(password []byte, hash string) bool {
	ok, err := s.hasher.Verify(password, hash)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordService creates a new PasswordService instance using Argon2id hashing.
// Uses the Moderate policy for a balance between security and performance.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}
