package transform

import (
	apperrors "github.com/allisson/anonymizer/internal/errors"
)

// MaxAttempts bounds the collision-retry loop. After this many perturbed
// candidates the cell fails hard.
const MaxAttempts = 8

var (
	// ErrExhaustedDomain means every retry candidate collided with an existing
	// mapping; the output domain is too small for the column.
	ErrExhaustedDomain = apperrors.Wrap(apperrors.ErrConflict, "anonymized value domain exhausted")

	// ErrFormatUnparseable means the value does not have the structure its
	// detected type promises.
	ErrFormatUnparseable = apperrors.Wrap(apperrors.ErrInvalidInput, "value does not match its detected format")
)
