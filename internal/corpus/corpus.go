// Package corpus bundles the static word lists fake replacements are drawn
// from. Draws are keyed HMAC selections, so the same original always maps to
// the same replacement under the same column key, and never reversibly.
package corpus

import (
	"crypto/hmac"
	"crypto/sha256"
	"embed"
	"encoding/binary"
	"fmt"
	"strings"
)

//go:embed data/*.txt
var dataFS embed.FS

// Corpus names accepted by Draw.
const (
	FirstNames  = "first_names"
	LastNames   = "last_names"
	MiddlePool  = "middle_pool"
	Cities      = "cities"
	StreetTypes = "street_types"
	StreetNames = "street_names"
	TLDs        = "tlds"
	DomainBases = "domain_bases"
	WordsShort  = "words_short"
	WordsMedium = "words_medium"
	WordsLong   = "words_long"
)

// middlePoolSize is the slice of the first-name corpus reused as the neutral
// middle-name pool.
const middlePoolSize = 200

// Corpora holds every loaded word list. Immutable after Load; freely shared
// across workers.
type Corpora struct {
	lists map[string][]string
}

// Load parses the embedded word lists. The result is shared for the whole run.
func Load() (*Corpora, error) {
	files := []string{
		FirstNames, LastNames, Cities, StreetTypes, StreetNames,
		TLDs, DomainBases, WordsShort, WordsMedium, WordsLong,
	}

	lists := make(map[string][]string, len(files)+1)
	for _, name := range files {
		raw, err := dataFS.ReadFile("data/" + name + ".txt")
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus %s: %w", name, err)
		}
		var words []string
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				words = append(words, line)
			}
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("corpus %s is empty", name)
		}
		lists[name] = words
	}

	first := lists[FirstNames]
	n := middlePoolSize
	if n > len(first) {
		n = len(first)
	}
	lists[MiddlePool] = first[:n]

	return &Corpora{lists: lists}, nil
}

// Draw selects a replacement for original from the named corpus. The index is
// HMAC(columnKey, corpusName || original) mod len, so draws are deterministic
// per (key, corpus, original) and carry no information back to the original.
func (c *Corpora) Draw(corpusName string, columnKey []byte, original string) (string, error) {
	words, ok := c.lists[corpusName]
	if !ok {
		return "", fmt.Errorf("unknown corpus %s", corpusName)
	}

	mac := hmac.New(sha256.New, columnKey)
	mac.Write([]byte(corpusName))
	mac.Write([]byte(original))
	sum := mac.Sum(nil)

	index := binary.BigEndian.Uint64(sum[:8]) % uint64(len(words))
	return words[index], nil
}

// WordBucket names the free-text corpus for a token length: short is four
// characters or fewer, long is nine or more.
func WordBucket(length int) string {
	switch {
	case length <= 4:
		return WordsShort
	case length <= 8:
		return WordsMedium
	default:
		return WordsLong
	}
}

// Size returns the number of entries in a corpus, zero when unknown.
func (c *Corpora) Size(corpusName string) int {
	return len(c.lists[corpusName])
}

// Contains reports whether value is an entry of the named corpus. Comparison
// is case-insensitive.
func (c *Corpora) Contains(corpusName, value string) bool {
	value = strings.ToLower(value)
	for _, word := range c.lists[corpusName] {
		if strings.ToLower(word) == value {
			return true
		}
	}
	return false
}
