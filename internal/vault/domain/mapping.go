// Package domain defines the mapping vault's core types. The vault is a
// bidirectional, encrypted store of original/anonymized value pairs keyed by
// HMAC fingerprints so plaintext never appears in lookup keys.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vault file format identity. A vault whose metadata does not carry this
// magic and version is refused rather than silently reinterpreted.
const (
	Magic       = "ANOV1\x00"
	MetaVersion = 1
)

// Mapping is one stored original/anonymized pair.
//
// HashKey and ReverseHashKey are hex-encoded truncated HMACs over
// (column, direction, value); Ciphertext is the AEAD-sealed Pair JSON with
// HashKey as associated data.
type Mapping struct {
	ID             uuid.UUID
	HashKey        string
	ReverseHashKey string
	ColumnName     string
	DataType       string
	Ciphertext     []byte
	Nonce          []byte
	CreatedAt      time.Time
}

// Pair is the plaintext payload of a mapping.
type Pair struct {
	Original   string `json:"original"`
	Anonymized string `json:"anonymized"`
}

// Meta is the single metadata row identifying the vault file and its key
// derivation parameters. PasswordHash is an Argon2id verifier and is empty
// when the vault key comes from an exported key file instead of a password.
type Meta struct {
	Magic         string
	Version       int
	Salt          []byte
	KDFIterations int
	PasswordHash  string
	Algorithm     string
	CreatedAt     time.Time
}

// UpsertOutcome reports whether a Store call inserted a new mapping or found
// an existing one. Anonymized always carries the winning value.
type UpsertOutcome struct {
	Inserted   bool
	Anonymized string
}

// Stats summarizes vault contents for diagnostics.
type Stats struct {
	TotalMappings int64
	ByType        map[string]int64
	ByColumn      map[string]int64
}
