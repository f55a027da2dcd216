package transform

import (
	"strings"

	"github.com/allisson/anonymizer/internal/detector"
	apperrors "github.com/allisson/anonymizer/internal/errors"
	"github.com/allisson/anonymizer/internal/fpe"
)

// transformIBAN preserves the country code, encrypts the BBAN under the
// alphanumeric alphabet, and recomputes the ISO 7064 check digits so the
// output validates. Spacing and case are restored positionally.
func (s *Set) transformIBAN(column, value string, attempt int) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(value, " ", ""))
	if len(normalized) < 15 ||
		!isUpperAlpha(normalized[0]) || !isUpperAlpha(normalized[1]) ||
		!isDigit(normalized[2]) || !isDigit(normalized[3]) {
		return "", ErrFormatUnparseable
	}

	country := normalized[:2]
	bban := normalized[4:]

	encrypted, err := s.cipher(column).Encrypt(tweakFor(column, attempt), fpe.Alphanumeric, bban)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrInvalidInput) {
			return "", ErrFormatUnparseable
		}
		return "", err
	}

	flat := country + detector.Mod97CheckDigits(country, encrypted) + encrypted

	var out strings.Builder
	next := 0
	for i := 0; i < len(value); i++ {
		if value[i] == ' ' {
			out.WriteByte(' ')
			continue
		}
		ch := flat[next]
		if value[i] >= 'a' && value[i] <= 'z' && ch >= 'A' && ch <= 'Z' {
			ch = ch - 'A' + 'a'
		}
		out.WriteByte(ch)
		next++
	}
	return out.String(), nil
}

func isUpperAlpha(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
