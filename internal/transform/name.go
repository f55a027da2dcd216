package transform

import (
	"strings"
	"unicode"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/format"
)

// transformName replaces each whitespace token with a corpus draw picked by
// token position: first name, neutral middle pool, last name. Hyphens split a
// token into independently drawn parts; capitalization survives per token.
func (s *Set) transformName(column, value string, attempt int) (string, error) {
	key := s.schedule.ColumnKey(column)
	tokenCount := len(strings.Fields(value))
	if tokenCount == 0 {
		return value, nil
	}

	var out strings.Builder
	var token strings.Builder
	tokenIdx := 0

	corpusFor := func(idx int) string {
		switch {
		case idx == 0:
			return corpus.FirstNames
		case idx == tokenCount-1:
			return corpus.LastNames
		default:
			return corpus.MiddlePool
		}
	}

	flush := func() error {
		if token.Len() == 0 {
			return nil
		}
		original := token.String()
		parts := strings.Split(original, "-")
		for i, part := range parts {
			if part == "" {
				continue
			}
			replaced, err := s.corpora.Draw(corpusFor(tokenIdx), key, drawKey(part, attempt))
			if err != nil {
				return err
			}
			parts[i] = format.ApplyCaps(replaced, format.DetectCaps(part))
		}
		out.WriteString(strings.Join(parts, "-"))
		token.Reset()
		tokenIdx++
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
