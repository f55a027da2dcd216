package transform

import (
	"strings"

	"github.com/allisson/anonymizer/internal/detector"
	"github.com/allisson/anonymizer/internal/fpe"
)

// transformPhone keeps the punctuation skeleton and the +country prefix and
// encrypts the remaining digits. Segment-leading digits that were non-zero in
// the original stay non-zero, enforced by cycle-walking.
func (s *Set) transformPhone(column, value string, params detector.Params, attempt int) (string, error) {
	runes := []rune(value)

	// Digits belonging to the country prefix are preserved verbatim.
	preserved := 0
	if strings.HasPrefix(value, "+") {
		preserved = len(params.PhoneCountry)
	}

	var payload strings.Builder
	var nonZeroStart []bool
	seenDigits := 0
	prevWasDigit := false
	for _, r := range runes {
		isDigit := r >= '0' && r <= '9'
		if isDigit {
			seenDigits++
			if seenDigits > preserved {
				nonZeroStart = append(nonZeroStart, !prevWasDigit && r != '0')
				payload.WriteRune(r)
			}
		}
		prevWasDigit = isDigit
	}

	block := payload.String()
	if block == "" {
		return value, nil
	}

	cipher := s.cipher(column)
	tweak := tweakFor(column, attempt)
	encrypted, err := cipher.EncryptWhere(tweak, fpe.Digits, block, func(candidate string) bool {
		for i, required := range nonZeroStart {
			if required && candidate[i] == '0' {
				return false
			}
		}
		return true
	})
	if err != nil {
		return "", err
	}

	var out strings.Builder
	seenDigits = 0
	next := 0
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			seenDigits++
			if seenDigits > preserved {
				out.WriteByte(encrypted[next])
				next++
				continue
			}
		}
		out.WriteRune(r)
	}
	return out.String(), nil
}
