package transform

import (
	"strings"
	"unicode"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/format"
	"github.com/allisson/anonymizer/internal/fpe"
)

// transformFreeText swaps each word for a length-bucketed dictionary draw.
// Capitalized words read as names and draw from the name corpus, numeric
// tokens stay numeric. Punctuation and spacing survive in place.
func (s *Set) transformFreeText(column, value string, attempt int) (string, error) {
	key := s.schedule.ColumnKey(column)

	var out strings.Builder
	var token strings.Builder

	flush := func() error {
		if token.Len() == 0 {
			return nil
		}
		replaced, err := s.freeTextToken(column, key, token.String(), attempt)
		if err != nil {
			return err
		}
		out.WriteString(replaced)
		token.Reset()
		return nil
	}

	for _, r := range value {
		if unicode.IsSpace(r) {
			if err := flush(); err != nil {
				return "", err
			}
			out.WriteRune(r)
			continue
		}
		token.WriteRune(r)
	}
	if err := flush(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (s *Set) freeTextToken(column string, key []byte, token string, attempt int) (string, error) {
	runes := []rune(token)
	start, end := 0, len(runes)
	for start < end && !isAlnum(runes[start]) {
		start++
	}
	for end > start && !isAlnum(runes[end-1]) {
		end--
	}
	if start == end {
		return token, nil
	}
	prefix, core, suffix := string(runes[:start]), string(runes[start:end]), string(runes[end:])

	var replaced string
	switch {
	case isDigitString(core):
		encrypted, err := s.cipher(column).Encrypt(tweakFor(column, attempt), fpe.Digits, core)
		if err != nil {
			return "", err
		}
		replaced = encrypted
	case unicode.IsUpper(runes[start]):
		word, err := s.corpora.Draw(corpus.FirstNames, key, drawKey(core, attempt))
		if err != nil {
			return "", err
		}
		replaced = format.ApplyCaps(word, format.DetectCaps(core))
	default:
		word, err := s.corpora.Draw(corpus.WordBucket(len([]rune(core))), key, drawKey(core, attempt))
		if err != nil {
			return "", err
		}
		replaced = strings.ToLower(word)
	}
	return prefix + replaced + suffix, nil
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigitString(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
