// Package fuzzy finds the nearest dictionary entry for OCR-garbled text.
package fuzzy

import (
	"sync"
	"unicode/utf8"
)

// DefaultCacheLimit is the number of memoized distances kept before the cache is reset
const DefaultCacheLimit = 1000

type pairKey struct {
	a, b string
}

// Matcher computes edit distances with a bounded memo. Safe for concurrent use.
type Matcher struct {
	mu    sync.Mutex
	cache map[pairKey]int
	limit int
}

// NewMatcher creates a matcher with the default cache limit
func NewMatcher() *Matcher {
	return NewMatcherWithLimit(DefaultCacheLimit)
}

// NewMatcherWithLimit creates a matcher whose cache is cleared wholesale once it holds more than limit entries
func NewMatcherWithLimit(limit int) *Matcher {
	return &Matcher{
		cache: make(map[pairKey]int),
		limit: limit,
	}
}

// Distance returns the unit-cost edit distance between a and b, counted in runes
func (m *Matcher) Distance(a, b string) int {
	key := pairKey{a, b}
	if b < a {
		key = pairKey{b, a}
	}

	m.mu.Lock()
	if d, ok := m.cache[key]; ok {
		m.mu.Unlock()
		return d
	}
	m.mu.Unlock()

	d := Levenshtein(key.a, key.b)

	m.mu.Lock()
	if len(m.cache) >= m.limit {
		m.cache = make(map[pairKey]int)
	}
	m.cache[key] = d
	m.mu.Unlock()

	return d
}

// CacheLen reports how many distances are memoized
func (m *Matcher) CacheLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// MaxDistance is the largest edit distance accepted as a match for value
func MaxDistance(value string) int {
	if utf8.RuneCountInString(value) <= 5 {
		return 2
	}
	return 3
}

// BestMatch returns the dictionary entry closest to value within MaxDistance.
// Entries whose length differs by more than the threshold are skipped.
// On ties the entry seen first wins.
func (m *Matcher) BestMatch(value string, dictionary []string) (string, bool) {
	threshold := MaxDistance(value)
	valueLen := utf8.RuneCountInString(value)

	best := ""
	bestDistance := threshold + 1
	for _, entry := range dictionary {
		if abs(utf8.RuneCountInString(entry)-valueLen) > threshold {
			continue
		}
		if d := m.Distance(value, entry); d < bestDistance {
			best = entry
			bestDistance = d
		}
	}

	return best, bestDistance <= threshold
}

// Levenshtein computes edit distance with a single rolling row sized to the shorter input
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			above := row[j]
			row[j] = min(above+1, row[j-1]+1, diag+cost)
			diag = above
		}
	}

	return row[len(rb)]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
