package detector

import (
	"strings"
	"unicode"
)

// stoplist holds common English function words; a token on this list
// disqualifies a cell from the name heuristic.
var stoplist = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "for": {}, "with": {}, "from": {},
	"this": {}, "that": {}, "all": {}, "new": {}, "not": {}, "are": {},
	"was": {}, "has": {}, "had": {}, "his": {}, "her": {}, "its": {},
	"our": {}, "your": {}, "their": {},
}

// streetTokens are the road-type words the address heuristic looks for.
var streetTokens = map[string]struct{}{
	"st": {}, "street": {}, "ave": {}, "avenue": {}, "rd": {}, "road": {},
	"blvd": {}, "boulevard": {}, "ln": {}, "lane": {}, "dr": {}, "drive": {},
	"ct": {}, "court": {}, "way": {}, "pl": {}, "place": {}, "ter": {},
	"terrace": {}, "hwy": {}, "highway": {}, "cres": {}, "crescent": {},
}

// looksLikeName accepts one to four title-case alphabetic tokens of two to
// twenty letters each, none of which is a function word.
func looksLikeName(cell string) bool {
	tokens := strings.Fields(cell)
	if len(tokens) < 1 || len(tokens) > 4 {
		return false
	}

	for _, token := range tokens {
		if _, stopped := stoplist[strings.ToLower(token)]; stopped {
			return false
		}
		runes := []rune(token)
		if len(runes) < 2 || len(runes) > 20 {
			return false
		}
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for i, r := range runes {
			if !unicode.IsLetter(r) {
				return false
			}
			if i > 0 && !unicode.IsLower(r) {
				return false
			}
		}
	}
	return true
}

// looksLikeAddress requires a street-type token plus at least one digit
// somewhere in the cell.
func looksLikeAddress(cell string) bool {
	hasDigit := strings.ContainsFunc(cell, unicode.IsDigit)
	if !hasDigit {
		return false
	}

	for _, token := range strings.Fields(cell) {
		token = strings.ToLower(strings.Trim(token, ".,"))
		if _, ok := streetTokens[token]; ok {
			return true
		}
	}
	return false
}
