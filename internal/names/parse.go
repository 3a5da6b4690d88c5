package names

import (
	"sort"
	"strings"
)

// Name is a party name split into its parts
type Name struct {
	First    string
	Middle   []string
	Surname  string
	Suffixes []string // Equivalence classes, e.g. "junior" is stored as "jr"
}

// Parse splits a raw docket name. With a comma the first name token is the
// surname ("Smith, John A."); without one the last is ("John A. Smith").
// It reports false when fewer than two name tokens remain.
func Parse(raw string) (Name, bool) {
	if strings.TrimSpace(raw) == "" {
		return Name{}, false
	}

	tokens := strings.Fields(Normalize(raw))
	var nameTokens, suffixes []string
	for i, tok := range tokens {
		key := strings.Trim(tok, ".")
		if key == "" {
			continue
		}
		if isSuffix(key, i == len(tokens)-1) {
			suffixes = append(suffixes, suffixClass[key])
			continue
		}
		nameTokens = append(nameTokens, key)
	}

	if len(nameTokens) < 2 {
		return Name{}, false
	}

	var n Name
	if surnameFirst(raw) {
		n.Surname = nameTokens[0]
		n.First = nameTokens[1]
		n.Middle = nameTokens[2:]
	} else {
		n.First = nameTokens[0]
		n.Surname = nameTokens[len(nameTokens)-1]
		n.Middle = nameTokens[1 : len(nameTokens)-1]
	}
	n.Suffixes = suffixes

	if n.Surname == "" || n.First == "" {
		return Name{}, false
	}
	return n, true
}

// surnameFirst reports whether the name uses the "Last, First" convention.
// A comma that only introduces a suffix ("John Smith, Jr.") does not count.
func surnameFirst(raw string) bool {
	segments := strings.Split(raw, ",")
	for len(segments) > 1 && onlySuffixes(segments[len(segments)-1]) {
		segments = segments[:len(segments)-1]
	}
	return len(segments) > 1
}

func onlySuffixes(segment string) bool {
	tokens := strings.Fields(Normalize(segment))
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if _, ok := suffixClass[strings.Trim(tok, ".")]; !ok {
			return false
		}
	}
	return true
}

// Canonical renders the name as "first middle... surname suffix..."
func (n Name) Canonical() string {
	parts := make([]string, 0, 2+len(n.Middle)+len(n.Suffixes))
	parts = append(parts, n.First)
	parts = append(parts, n.Middle...)
	parts = append(parts, n.Surname)
	parts = append(parts, n.Suffixes...)
	return strings.Join(parts, " ")
}

// suffixSet returns the distinct suffix classes in sorted order
func (n Name) suffixSet() []string {
	seen := make(map[string]bool, len(n.Suffixes))
	var out []string
	for _, s := range n.Suffixes {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
