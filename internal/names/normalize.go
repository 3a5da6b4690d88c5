// Package names decides whether two docket party names denote the same person.
//
// Court systems format names differently ("Smith, John A. Jr." on one docket,
// "John Alan Smith Jr." on another). Matching is a heuristic over surname,
// first name, middle names or initials, and generational suffixes; it never
// errors and treats anything it cannot parse as "no match".
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases a name, folds diacritics, drops punctuation other than
// periods, and collapses whitespace. Commas become separators.
func Normalize(raw string) string {
	folded := foldDiacritics(raw)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.':
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == ',':
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// foldDiacritics maps "José" to "Jose". A transformer carries state, so one
// is built per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// suffixClass maps each recognized generational suffix to its equivalence
// class. Only jr/junior and sr/senior collapse; numerals equal themselves.
var suffixClass = map[string]string{
	"jr":     "jr",
	"junior": "jr",
	"sr":     "sr",
	"senior": "sr",
	"ii":     "ii",
	"iii":    "iii",
	"iv":     "iv",
	"v":      "v",
}

// isSuffix reports whether a period-trimmed token is a generational suffix.
// A one-letter suffix ("v") is only accepted as the final token so that a
// middle initial V is not mistaken for one.
func isSuffix(token string, last bool) bool {
	if _, ok := suffixClass[token]; !ok {
		return false
	}
	return len(token) > 1 || last
}
