package names

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Matcher matches names with memoized parsing. A classification pass parses
// the same companion-docket names once per appellate case; the cache keeps
// that to once per pass. Safe for concurrent use.
type Matcher struct {
	cache *gocache.Cache
}

type parsed struct {
	name Name
	ok   bool
}

// NewMatcher creates a matcher whose parse cache entries live for ttl
func NewMatcher(ttl time.Duration) *Matcher {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Matcher{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Parse is the memoized form of the package-level Parse
func (m *Matcher) Parse(raw string) (Name, bool) {
	if val, found := m.cache.Get(raw); found {
		p := val.(parsed)
		return p.name, p.ok
	}

	n, ok := Parse(raw)
	m.cache.SetDefault(raw, parsed{name: n, ok: ok})
	return n, ok
}

// Match is the memoized form of the package-level Match
func (m *Matcher) Match(a, b string) bool {
	na, ok := m.Parse(a)
	if !ok {
		return false
	}
	nb, ok := m.Parse(b)
	if !ok {
		return false
	}
	return matchParsed(na, nb)
}

// Len returns the number of cached parses
func (m *Matcher) Len() int {
	return m.cache.ItemCount()
}

// Flush empties the parse cache
func (m *Matcher) Flush() {
	m.cache.Flush()
}
