package transform

import (
	"strings"
	"unicode"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/format"
	"github.com/allisson/anonymizer/internal/fpe"
)

// streetTypeAbbrevs complements the full-word street-type corpus with the
// common abbreviated forms.
var streetTypeAbbrevs = map[string]bool{
	"st": true, "ave": true, "rd": true, "blvd": true, "ln": true,
	"dr": true, "ct": true, "pl": true, "ter": true, "hwy": true,
	"cres": true, "sq": true,
}

// transformAddress rewrites one comma-separated field at a time. Fields with
// digits keep their numbers format-preserved and swap street names for corpus
// draws; digit-free fields become a city draw. Street-type words survive
// untouched so the output still reads as an address.
func (s *Set) transformAddress(column, value string, attempt int) (string, error) {
	key := s.schedule.ColumnKey(column)
	fields := strings.Split(value, ",")
	for i, field := range fields {
		replaced, err := s.addressField(column, key, field, attempt)
		if err != nil {
			return "", err
		}
		fields[i] = replaced
	}
	return strings.Join(fields, ","), nil
}

func (s *Set) addressField(column string, key []byte, field string, attempt int) (string, error) {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return field, nil
	}
	leading := field[:len(field)-len(strings.TrimLeftFunc(field, unicode.IsSpace))]
	trailing := field[len(strings.TrimRightFunc(field, unicode.IsSpace)):]

	if !strings.ContainsFunc(trimmed, unicode.IsDigit) {
		city, err := s.corpora.Draw(corpus.Cities, key, drawKey(trimmed, attempt))
		if err != nil {
			return "", err
		}
		return leading + city + trailing, nil
	}

	var out strings.Builder
	var token strings.Builder
	out.WriteString(leading)

	flush := func() error {
		if token.Len() == 0 {
			return nil
		}
		replaced, err := s.addressToken(column, key, token.String(), attempt)
		if err != nil {
			return err
		}
		out.WriteString(replaced)
		token.Reset()
		return nil
	}

	for _, r := range trimmed {
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

	out.WriteString(trailing)
	return out.String(), nil
}

func (s *Set) addressToken(column string, key []byte, token string, attempt int) (string, error) {
	core := strings.Trim(token, ".,")
	if core == "" {
		return token, nil
	}
	if streetTypeAbbrevs[strings.ToLower(core)] || s.corpora.Contains(corpus.StreetTypes, core) {
		return token, nil
	}

	if strings.ContainsFunc(core, unicode.IsDigit) {
		return s.encryptTokenDigits(column, token, attempt)
	}

	prefix := token[:len(token)-len(strings.TrimLeft(token, ".,"))]
	suffix := token[len(strings.TrimRight(token, ".,")):]

	replaced, err := s.corpora.Draw(corpus.StreetNames, key, drawKey(core, attempt))
	if err != nil {
		return "", err
	}
	return prefix + format.ApplyCaps(replaced, format.DetectCaps(core)) + suffix, nil
}

// encryptTokenDigits encrypts each digit run of a token in place. Runs that
// started with a non-zero digit stay non-zero, so house numbers never gain a
// leading zero.
func (s *Set) encryptTokenDigits(column, token string, attempt int) (string, error) {
	cipher := s.cipher(column)
	tweak := tweakFor(column, attempt)

	var out strings.Builder
	var run strings.Builder

	flush := func() error {
		if run.Len() == 0 {
			return nil
		}
		block := run.String()
		leadNonZero := block[0] != '0'
		encrypted, err := cipher.EncryptWhere(tweak, fpe.Digits, block, func(candidate string) bool {
			return !leadNonZero || candidate[0] != '0'
		})
		if err != nil {
			return err
		}
		out.WriteString(encrypted)
		run.Reset()
		return nil
	}

	for _, r := range token {
		if r >= '0' && r <= '9' {
			run.WriteRune(r)
			continue
		}
		if err := flush(); err != nil {
			return "", err
		}
		out.WriteRune(r)
	}
	if err := flush(); err != nil {
		return "", err
	}
	return out.String(), nil
}
