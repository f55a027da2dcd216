package transform

import (
	"strings"

	"github.com/allisson/anonymizer/internal/detector"
	"github.com/allisson/anonymizer/internal/format"
	"github.com/allisson/anonymizer/internal/fpe"
)

// transformCreditCard encrypts all but the last digit and recomputes the Luhn
// check digit, keeping separators in place. The output is always Luhn-valid.
func (s *Set) transformCreditCard(column, value string, attempt int) (string, error) {
	mask, segments := format.Decompose(value)

	var digits strings.Builder
	for _, segment := range segments {
		if segment.Class != format.ClassDigit {
			return "", ErrFormatUnparseable
		}
		digits.WriteString(segment.Value)
	}
	all := digits.String()
	if len(all) < 13 || len(all) > 19 {
		return "", ErrFormatUnparseable
	}

	payload := all[:len(all)-1]
	encrypted, err := s.cipher(column).Encrypt(tweakFor(column, attempt), fpe.Digits, payload)
	if err != nil {
		return "", err
	}
	full := encrypted + string(detector.LuhnCheckDigit(encrypted))

	offset := 0
	for i := range segments {
		length := len(segments[i].Value)
		segments[i].Value = full[offset : offset+length]
		offset += length
	}
	return format.Recompose(mask, segments)
}
