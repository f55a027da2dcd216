package transform

import (
	apperrors "github.com/allisson/anonymizer/internal/errors"
	"github.com/allisson/anonymizer/internal/format"
	"github.com/allisson/anonymizer/internal/fpe"
)

// encryptSegments is the generic shape-preserving rewrite: every payload
// segment is encrypted under its class alphabet and literals stay in place.
// Segments with codepoints outside the ASCII alphabets cannot ride the cipher
// and fall back to a keyed digest fill of the same class.
func (s *Set) encryptSegments(column, value string, attempt int) (string, error) {
	mask, segments := format.Decompose(value)
	if len(segments) == 0 {
		return value, nil
	}

	cipher := s.cipher(column)
	tweak := tweakFor(column, attempt)
	key := s.schedule.ColumnKey(column)

	for i, segment := range segments {
		encrypted, err := cipher.Encrypt(tweak, segmentAlphabet(segment.Class), segment.Value)
		if err != nil {
			if !apperrors.Is(err, apperrors.ErrInvalidInput) {
				return "", err
			}
			encrypted = digestFill(key, drawKey(segment.Value, attempt), segment.Alphabet(), len([]rune(segment.Value)))
		}
		segments[i].Value = encrypted
	}
	return format.Recompose(mask, segments)
}

func segmentAlphabet(class format.Class) *fpe.Alphabet {
	switch class {
	case format.ClassUpper:
		return fpe.Upper
	case format.ClassLower:
		return fpe.Lower
	default:
		return fpe.Digits
	}
}
