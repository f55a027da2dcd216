package domain

import (
	"github.com/allisson/anonymizer/internal/errors"
)

// Key schedule error definitions.
var (
	// ErrInvalidSeed indicates the provided master seed is malformed.
	ErrInvalidSeed = errors.Wrap(errors.ErrInvalidInput, "invalid seed")

	// ErrKeyFileInvalid indicates an exported key file is malformed or has an
	// unsupported version.
	ErrKeyFileInvalid = errors.Wrap(errors.ErrInvalidInput, "invalid key file")
)
