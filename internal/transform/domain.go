package transform

import (
	"strings"

	"github.com/allisson/anonymizer/internal/corpus"
	"github.com/allisson/anonymizer/internal/format"
)

// domainKeyLabel keys domain pseudonyms off a fixed schedule entry, so the
// same real domain maps to the same replacement in every column of a run.
const domainKeyLabel = "domain"

// transformDomain maps a domain to a stable pseudonym shared across columns.
func (s *Set) transformDomain(value string, attempt int) (string, error) {
	return s.fakeDomain(s.schedule.ColumnKey(domainKeyLabel), value, attempt)
}

// fakeDomain replaces every label of a domain with a keyed corpus draw,
// preserving label count and keeping the TLD when it is a known one.
func (s *Set) fakeDomain(key []byte, value string, attempt int) (string, error) {
	labels := strings.Split(value, ".")
	if len(labels) < 2 {
		return "", ErrFormatUnparseable
	}

	last := len(labels) - 1
	for i, label := range labels {
		if label == "" {
			return "", ErrFormatUnparseable
		}
		if i == last {
			if s.corpora.Contains(corpus.TLDs, label) {
				continue
			}
			replaced, err := s.corpora.Draw(corpus.TLDs, key, drawKey(label, attempt))
			if err != nil {
				return "", err
			}
			labels[i] = format.ApplyCaps(replaced, format.DetectCaps(label))
			continue
		}

		replaced, err := s.corpora.Draw(corpus.DomainBases, key, drawKey(label, attempt))
		if err != nil {
			return "", err
		}
		labels[i] = format.ApplyCaps(replaced, format.DetectCaps(label))
	}

	return strings.Join(labels, "."), nil
}
