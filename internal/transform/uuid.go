package transform

import (
	"strings"

	apperrors "github.com/allisson/anonymizer/internal/errors"
	"github.com/allisson/anonymizer/internal/fpe"
)

// transformUUID encrypts each hex segment between dashes, preserving dash
// positions and per-character case.
func (s *Set) transformUUID(column, value string, attempt int) (string, error) {
	cipher := s.cipher(column)
	tweak := tweakFor(column, attempt)

	segments := strings.Split(strings.ToLower(value), "-")
	for i, segment := range segments {
		encrypted, err := cipher.Encrypt(tweak, fpe.HexLower, segment)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrInvalidInput) {
				return "", ErrFormatUnparseable
			}
			return "", err
		}
		segments[i] = encrypted
	}

	out := []byte(strings.Join(segments, "-"))
	for i := 0; i < len(value) && i < len(out); i++ {
		if value[i] >= 'A' && value[i] <= 'F' && out[i] >= 'a' && out[i] <= 'f' {
			out[i] = out[i] - 'a' + 'A'
		}
	}
	return string(out), nil
}
