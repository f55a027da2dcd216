package domain

import (
	"github.com/allisson/anonymizer/internal/errors"
)

// Vault error definitions.
var (
	// ErrMappingNotFound indicates no mapping exists for the given fingerprint.
	ErrMappingNotFound = errors.Wrap(errors.ErrNotFound, "mapping not found")

	// ErrVaultAuth indicates the vault password verifier rejected the password.
	// Distinct from ErrVaultCorrupt so a typo is never reported as data damage.
	ErrVaultAuth = errors.Wrap(errors.ErrUnauthorized, "vault authentication failed")

	// ErrVaultIncompatible indicates the vault metadata carries an unknown magic
	// or version and the file cannot be opened safely.
	ErrVaultIncompatible = errors.Wrap(errors.ErrInvalidInput, "incompatible vault format")

	// ErrVaultCorrupt indicates a stored mapping failed authentication on decrypt.
	ErrVaultCorrupt = errors.New("vault record corrupt")

	// ErrVaultIO indicates an underlying storage failure.
	ErrVaultIO = errors.New("vault i/o failure")

	// ErrAnonymizedCollision indicates a generated anonymized value is already
	// claimed by a different original in the same column. Callers retry with a
	// perturbed tweak.
	ErrAnonymizedCollision = errors.Wrap(errors.ErrConflict, "anonymized value collision")
)
