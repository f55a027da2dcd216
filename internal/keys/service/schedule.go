// Package service implements the deterministic key schedule. A single master
// seed fans out into one sub-key per column so identical values in different
// columns never share cryptographic material.
package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	apperrors "github.com/allisson/anonymizer/internal/errors"
	keysDomain "github.com/allisson/anonymizer/internal/keys/domain"
)

// Separator bytes for vault fingerprints. Forward and reverse lookups use
// distinct direction bytes so the two key spaces cannot collide.
const (
	directionForward byte = 0x00
	directionReverse byte = 0x01
)

// FingerprintSize is the truncated HMAC length used for vault lookup keys.
const FingerprintSize = 16

// Schedule derives and caches all keys for one anonymization run.
//
// The master key is derived once from the seed; column keys are derived on
// demand and memoized. All methods are safe for concurrent use.
type Schedule struct {
	master     []byte
	seed       []byte
	columnKeys sync.Map
}

// NewSchedule creates a key schedule from the given master seed.
//
// A nil or empty seed means a fresh random seed is generated; callers can read
// it back through Seed to make the run reproducible.
func NewSchedule(seed []byte) (*Schedule, error) {
	if len(seed) == 0 {
		seed = make([]byte, keysDomain.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			return nil, apperrors.Wrap(err, "failed to generate random seed")
		}
	}

	master := pbkdf2.Key(seed, []byte(keysDomain.MasterSalt), keysDomain.KDFIterations, keysDomain.MasterKeySize, sha256.New)
	return &Schedule{master: master, seed: seed}, nil
}

// Seed returns the master seed this schedule was built from.
func (s *Schedule) Seed() []byte {
	return s.seed
}

// ColumnKey returns the sub-key for a column, deriving and caching it on first use.
func (s *Schedule) ColumnKey(column string) []byte {
	if key, ok := s.columnKeys.Load(column); ok {
		return key.([]byte)
	}

	mac := hmac.New(sha256.New, s.master)
	mac.Write([]byte(column))
	key := mac.Sum(nil)

	actual, _ := s.columnKeys.LoadOrStore(column, key)
	return actual.([]byte)
}

// ForwardFingerprint computes the vault lookup key for an original value.
// The fingerprint is a truncated HMAC over column and value, so the vault
// never stores plaintext lookup keys.
func (s *Schedule) ForwardFingerprint(column, value string) []byte {
	return s.fingerprint(directionForward, column, value)
}

// ReverseFingerprint computes the vault lookup key for an anonymized value.
func (s *Schedule) ReverseFingerprint(column, value string) []byte {
	return s.fingerprint(directionReverse, column, value)
}

func (s *Schedule) fingerprint(direction byte, column, value string) []byte {
	mac := hmac.New(sha256.New, s.master)
	mac.Write([]byte(column))
	mac.Write([]byte{direction})
	mac.Write([]byte(value))
	return mac.Sum(nil)[:FingerprintSize]
}

// DeriveVaultKey derives the vault encryption key from a password and salt
// using PBKDF2-HMAC-SHA256. The iteration count comes from vault metadata so
// vaults created under older parameters keep opening.
func DeriveVaultKey(password, salt []byte, iterations int) []byte {
	return pbkdf2.Key(password, salt, iterations, keysDomain.MasterKeySize, sha256.New)
}

// GenerateVaultKey creates a fresh random 32-byte vault encryption key.
// Used when no vault password is configured; the key is then exported to a
// key file so later runs can reopen the vault.
func GenerateVaultKey() ([]byte, error) {
	key := make([]byte, keysDomain.MasterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate vault key")
	}
	return key, nil
}
