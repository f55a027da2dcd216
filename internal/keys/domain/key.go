// Package domain defines the key material types used by the anonymization engine.
package domain

import "time"

const (
	// MasterKeySize is the size in bytes of the derived master key.
	MasterKeySize = 32

	// SeedSize is the size in bytes of a generated master seed.
	SeedSize = 32

	// KDFIterations is the PBKDF2 iteration count for master and vault key derivation.
	KDFIterations = 200_000

	// MasterSalt is the fixed salt for master key derivation. Changing it would
	// orphan every vault built with the previous value.
	MasterSalt = "anonymizer-v1"
)

// KeyFile is the on-disk representation of an exported vault key.
// The Key field holds the base64-encoded key material, or the base64-encoded
// KMS-wrapped key when a keeper URI is configured.
type KeyFile struct {
	Version   int       `json:"version"`
	Key       string    `json:"key"`
	Algorithm string    `json:"algorithm"`
	Wrapped   bool      `json:"wrapped,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KeyFileVersion is the current key file format version.
const KeyFileVersion = 1

// KeyFileAlgorithm identifies the cipher the exported key is intended for.
const KeyFileAlgorithm = "AES-256-GCM"
