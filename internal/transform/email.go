package transform

import (
	"strings"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/format"
)

// transformEmail rewrites each local-part token through a keyed name draw and
// anonymizes the domain. Separators and per-token case survive.
func (s *Set) transformEmail(column, value string, attempt int) (string, error) {
	local, domainPart, ok := strings.Cut(value, "@")
	if !ok || local == "" || domainPart == "" {
		return "", ErrFormatUnparseable
	}

	key := s.schedule.ColumnKey(column)
	var out strings.Builder
	var token strings.Builder

	flush := func() error {
		if token.Len() == 0 {
			return nil
		}
		original := token.String()
		replaced, err := s.corpora.Draw(corpus.FirstNames, key, drawKey(original, attempt))
		if err != nil {
			return err
		}
		out.WriteString(format.ApplyCaps(replaced, format.DetectCaps(original)))
		token.Reset()
		return nil
	}

	for _, r := range local {
		switch r {
		case '.', '_', '-', '+':
			if err := flush(); err != nil {
				return "", err
			}
			out.WriteRune(r)
		default:
			token.WriteRune(r)
		}
	}
	if err := flush(); err != nil {
		return "", err
	}

	var anonDomain string
	var err error
	if s.preserveDomains {
		anonDomain, err = s.transformDomain(domainPart, attempt)
	} else {
		anonDomain, err = s.fakeDomain(key, domainPart, attempt)
	}
	if err != nil {
		return "", err
	}

	return out.String() + "@" + anonDomain, nil
}
