// Package format introspects the character-level shape of a value. Transformers
// decompose an input into a shape mask plus payload segments, rewrite the
// payload, and recompose an output whose Signature matches the input's.
package format

import (
	"strings"
	"unicode"

	apperrors "github.com/allisson/anonymizer/internal/errors"
)

// Class identifies the character class of a single codepoint.
type Class uint8

const (
	ClassUpper Class = iota
	ClassLower
	ClassDigit
	ClassOther
)

// Alphabets backing each payload class. OTHER codepoints carry no alphabet;
// they pass through the mask as literals.
const (
	AlphabetUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	AlphabetLower = "abcdefghijklmnopqrstuvwxyz"
	AlphabetDigit = "0123456789"
)

// ErrShapeMismatch is returned by Recompose when the segments do not fill the
// mask exactly.
var ErrShapeMismatch = apperrors.Wrap(apperrors.ErrInvalidInput, "payload does not match shape mask")

// MaskEntry records the class of one codepoint. Literal is set only for
// ClassOther positions.
type MaskEntry struct {
	Class   Class
	Literal rune
}

// Mask is the per-codepoint shape of a value.
type Mask []MaskEntry

// Segment is a contiguous run of payload codepoints sharing one class.
type Segment struct {
	Class Class
	Value string
}

// Alphabet returns the character set the segment's payload is drawn from.
func (s Segment) Alphabet() string {
	switch s.Class {
	case ClassUpper:
		return AlphabetUpper
	case ClassLower:
		return AlphabetLower
	default:
		return AlphabetDigit
	}
}

func classify(r rune) Class {
	switch {
	case unicode.IsUpper(r):
		return ClassUpper
	case unicode.IsLower(r):
		return ClassLower
	case unicode.IsDigit(r):
		return ClassDigit
	default:
		return ClassOther
	}
}

// Decompose walks the value once and splits it into a shape mask and payload
// segments. OTHER codepoints are literal and never appear in a segment.
func Decompose(value string) (Mask, []Segment) {
	runes := []rune(value)
	mask := make(Mask, 0, len(runes))
	var segments []Segment
	var current strings.Builder
	currentClass := ClassOther

	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, Segment{Class: currentClass, Value: current.String()})
			current.Reset()
		}
	}

	for _, r := range runes {
		class := classify(r)
		if class == ClassOther {
			flush()
			mask = append(mask, MaskEntry{Class: ClassOther, Literal: r})
			continue
		}
		if current.Len() > 0 && class != currentClass {
			flush()
		}
		currentClass = class
		current.WriteRune(r)
		mask = append(mask, MaskEntry{Class: class})
	}
	flush()

	return mask, segments
}

// Recompose is the inverse of Decompose: it threads the segment payloads back
// through the mask. The segments must fill the mask's payload positions
// exactly, class by class.
func Recompose(mask Mask, segments []Segment) (string, error) {
	var out strings.Builder
	segIdx := 0
	var segRunes []rune
	segPos := 0

	for _, entry := range mask {
		if entry.Class == ClassOther {
			out.WriteRune(entry.Literal)
			continue
		}
		for segRunes == nil || segPos >= len(segRunes) {
			if segIdx >= len(segments) {
				return "", ErrShapeMismatch
			}
			segRunes = []rune(segments[segIdx].Value)
			segPos = 0
			segIdx++
		}
		if classify(segRunes[segPos]) != entry.Class {
			return "", ErrShapeMismatch
		}
		out.WriteRune(segRunes[segPos])
		segPos++
	}

	if segIdx < len(segments) || (segRunes != nil && segPos < len(segRunes)) {
		return "", ErrShapeMismatch
	}
	return out.String(), nil
}

// Signature renders the shape of a value as a string: one class code per
// payload codepoint (U, L, D) and the literal rune for OTHER positions.
// Two values are format-equivalent when their signatures are equal.
func Signature(value string) string {
	var out strings.Builder
	for _, r := range value {
		switch classify(r) {
		case ClassUpper:
			out.WriteByte('U')
		case ClassLower:
			out.WriteByte('L')
		case ClassDigit:
			out.WriteByte('D')
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

// PayloadLength counts the non-literal positions of a mask. The total drives
// cipher domain sizing.
func (m Mask) PayloadLength() int {
	n := 0
	for _, entry := range m {
		if entry.Class != ClassOther {
			n++
		}
	}
	return n
}
