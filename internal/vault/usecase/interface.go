// Package usecase defines interfaces and implementations for mapping vault use cases.
// Provides encrypted bidirectional storage of original/anonymized pairs with
// first-writer-wins upsert semantics.
package usecase

import (
	"context"

	vaultDomain "github.com/allisson/anonymizer/internal/vault/domain"
)

// MappingRepository defines the interface for mapping persistence operations.
type MappingRepository interface {
	// Insert adds a new mapping. Returns errors.ErrConflict when the forward
	// hash key already exists and vaultDomain.ErrAnonymizedCollision when the
	// reverse hash key is already claimed by another original.
	Insert(ctx context.Context, mapping *vaultDomain.Mapping) error
	GetByHashKey(ctx context.Context, hashKey string) (*vaultDomain.Mapping, error)
	GetByReverseHashKey(ctx context.Context, reverseHashKey string) (*vaultDomain.Mapping, error)

	// IterColumn streams all mappings of a column to fn in insertion order.
	IterColumn(ctx context.Context, columnName string, fn func(*vaultDomain.Mapping) error) error

	// Stats returns total, per-type, and per-column mapping counts.
	Stats(ctx context.Context) (*vaultDomain.Stats, error)

	// GetMeta retrieves the vault metadata row; ErrMappingNotFound when uninitialized.
	GetMeta(ctx context.Context) (*vaultDomain.Meta, error)
	InsertMeta(ctx context.Context, meta *vaultDomain.Meta) error
}

// VaultUseCase defines the interface for mapping vault operations.
//
// One of the Open methods must succeed before any other call; they verify the
// vault's identity and derive or accept the record encryption key.
type VaultUseCase interface {
	// OpenWithPassword opens (or initializes) a password-protected vault.
	// Returns vaultDomain.ErrVaultAuth on password mismatch and
	// vaultDomain.ErrVaultIncompatible on unknown magic or version.
	OpenWithPassword(ctx context.Context, password []byte) error

	// OpenWithKey opens (or initializes) a vault using raw key material from an
	// exported key file.
	OpenWithKey(ctx context.Context, key []byte) error

	// Store persists an original/anonymized pair. When another writer already
	// claimed the same original, the stored pair wins and the outcome carries
	// its anonymized value. Returns vaultDomain.ErrAnonymizedCollision when the
	// anonymized value is taken by a different original in the same column.
	Store(
		ctx context.Context,
		column string,
		dataType string,
		original string,
		anonymized string,
	) (*vaultDomain.UpsertOutcome, error)

	// Forward retrieves the pair stored for an original value.
	// Returns vaultDomain.ErrMappingNotFound when absent.
	Forward(ctx context.Context, column, original string) (*vaultDomain.Pair, error)

	// Reverse retrieves the pair stored for an anonymized value.
	// Returns vaultDomain.ErrMappingNotFound when absent.
	Reverse(ctx context.Context, column, anonymized string) (*vaultDomain.Pair, error)

	// IterColumn streams decrypted pairs of a column for diagnostics.
	IterColumn(ctx context.Context, column string, fn func(vaultDomain.Pair) error) error

	// Stats returns vault content statistics.
	Stats(ctx context.Context) (*vaultDomain.Stats, error)
}
