package transform

import (
	apperrors "github.com/allisson/anonymizer/internal/errors"
	"github.com/allisson/anonymizer/internal/fpe"
)

// transformNumericID encrypts the digit string in place. Leading zeros are a
// legal output, matching identifiers that carry them.
func (s *Set) transformNumericID(column, value string, attempt int) (string, error) {
	encrypted, err := s.cipher(column).Encrypt(tweakFor(column, attempt), fpe.Digits, value)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			return "", ErrFormatUnparseable
		}
		return "", err
	}
	return encrypted, nil
}
