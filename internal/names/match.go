package names

import (
	"github.com/antzucaro/matchr"
)

// Match reports whether two docket names plausibly denote the same person
func Match(a, b string) bool {
	na, ok := Parse(a)
	if !ok {
		return false
	}
	nb, ok := Parse(b)
	if !ok {
		return false
	}
	return matchParsed(na, nb)
}

func matchParsed(a, b Name) bool {
	if a.Canonical() == b.Canonical() {
		return true
	}

	if a.Surname != b.Surname {
		return false
	}

	if len(a.Suffixes) > 0 && len(b.Suffixes) > 0 && !equalSets(a.suffixSet(), b.suffixSet()) {
		return false
	}

	if a.First != b.First {
		return false
	}

	// Only middles present on both sides are compared
	for i := 0; i < len(a.Middle) && i < len(b.Middle); i++ {
		if !middleCompatible(a.Middle[i], b.Middle[i]) {
			return false
		}
	}

	return true
}

// middleCompatible accepts equal tokens, or an initial against a full name
// starting with that letter
func middleCompatible(x, y string) bool {
	if x == y {
		return true
	}
	if isInitial(x) || isInitial(y) {
		return firstRune(x) == firstRune(y)
	}
	return false
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func isInitial(token string) bool {
	return len([]rune(token)) == 1
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Similarity scores two names with Jaro-Winkler over their canonical forms.
// It is diagnostic only; Match never consults it.
func Similarity(a, b string) float64 {
	return matchr.JaroWinkler(similarityForm(a), similarityForm(b), false)
}

func similarityForm(raw string) string {
	if n, ok := Parse(raw); ok {
		return n.Canonical()
	}
	return Normalize(raw)
}
