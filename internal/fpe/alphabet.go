// Package fpe implements a format-preserving cipher: a ten-round unbalanced
// Feistel network over an arbitrary alphabet, keyed per column and
// parameterized by a tweak. Encrypt and Decrypt are exact inverses over the
// domain radix^length.
package fpe

import (
	"fmt"

	apperrors "github.com/allisson/anonymizer/internal/errors"
)

// Alphabet is an ordered set of distinct runes. The rune order defines the
// numeric value of each symbol, so two alphabets with the same runes in a
// different order describe different ciphers.
type Alphabet struct {
	runes []rune
	index map[rune]int
}

// Predefined alphabets for the common payload classes.
var (
	Digits       = MustAlphabet("0123456789")
	HexLower     = MustAlphabet("0123456789abcdef")
	HexUpper     = MustAlphabet("0123456789ABCDEF")
	Upper        = MustAlphabet("ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	Lower        = MustAlphabet("abcdefghijklmnopqrstuvwxyz")
	Alphanumeric = MustAlphabet("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ")
)

// NewAlphabet builds an alphabet from an ordered symbol string. At least two
// distinct symbols are required.
func NewAlphabet(symbols string) (*Alphabet, error) {
	runes := []rune(symbols)
	if len(runes) < 2 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "alphabet needs at least two symbols")
	}

	index := make(map[rune]int, len(runes))
	for i, r := range runes {
		if _, ok := index[r]; ok {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("duplicate symbol %q in alphabet", r))
		}
		index[r] = i
	}

	return &Alphabet{runes: runes, index: index}, nil
}

// MustAlphabet is NewAlphabet that panics. Reserved for package-level alphabets
// built from constants.
func MustAlphabet(symbols string) *Alphabet {
	a, err := NewAlphabet(symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// Radix returns the number of symbols in the alphabet.
func (a *Alphabet) Radix() int {
	return len(a.runes)
}

// Contains reports whether r is a symbol of the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Encode maps a string to its per-symbol numeric values.
func (a *Alphabet) Encode(s string) ([]int, error) {
	digits := make([]int, 0, len(s))
	for _, r := range s {
		i, ok := a.index[r]
		if !ok {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, fmt.Sprintf("symbol %q is not in the alphabet", r))
		}
		digits = append(digits, i)
	}
	return digits, nil
}

// Decode is the inverse of Encode. Digits must be valid alphabet indexes.
func (a *Alphabet) Decode(digits []int) string {
	runes := make([]rune, len(digits))
	for i, d := range digits {
		runes[i] = a.runes[d]
	}
	return string(runes)
}
