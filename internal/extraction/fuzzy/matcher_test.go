package fuzzy_test

import (
	"fmt"
	"testing"

	"github.com/formflow/formflow-backend/internal/extraction/fuzzy"
	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"الطوارئ", "الطوارى", 1},
		{"محمد", "محمد", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, fuzzy.Levenshtein(tt.a, tt.b))
		})
	}
}

func TestDistance_SymmetricAndReflexive(t *testing.T) {
	m := fuzzy.NewMatcher()
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"العمليات", "العمليا"},
		{"ORIGINAL", "0RIGINAL"},
		{"", "x"},
	}

	for _, p := range pairs {
		assert.Equal(t, m.Distance(p[0], p[1]), m.Distance(p[1], p[0]))
		assert.Equal(t, 0, m.Distance(p[0], p[0]))
	}
}

func TestDistance_CacheIsBounded(t *testing.T) {
	m := fuzzy.NewMatcherWithLimit(10)
	for i := 0; i < 25; i++ {
		m.Distance(fmt.Sprintf("a%d", i), "b")
		assert.LessOrEqual(t, m.CacheLen(), 10)
	}
}

func TestDistance_UnorderedPairSharesEntry(t *testing.T) {
	m := fuzzy.NewMatcher()
	m.Distance("abc", "abd")
	m.Distance("abd", "abc")
	assert.Equal(t, 1, m.CacheLen())
}

func TestMaxDistance(t *testing.T) {
	assert.Equal(t, 2, fuzzy.MaxDistance("abcde"))
	assert.Equal(t, 3, fuzzy.MaxDistance("abcdef"))
	assert.Equal(t, 2, fuzzy.MaxDistance("محمد"))
}

func TestBestMatch(t *testing.T) {
	m := fuzzy.NewMatcher()
	dict := []string{"الطوارئ", "العمليات", "الأشعة", "المختبر"}

	tests := []struct {
		name   string
		value  string
		want   string
		wantOK bool
	}{
		{"exact", "الأشعة", "الأشعة", true},
		{"one substitution", "الطوارى", "الطوارئ", true},
		{"missing letter", "العمليا", "العمليات", true},
		{"too far", "تقنية", "", false},
		{"length pruned", "ا", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.BestMatch(tt.value, dict)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBestMatch_ThresholdIsInclusive(t *testing.T) {
	m := fuzzy.NewMatcher()
	// "abcde" is 5 runes, so distance 2 is accepted and 3 is not
	got, ok := m.BestMatch("abcde", []string{"abcxy"})
	assert.True(t, ok)
	assert.Equal(t, "abcxy", got)

	_, ok = m.BestMatch("abcde", []string{"axyzz"})
	assert.False(t, ok)
}

func TestBestMatch_FirstSeenWinsTies(t *testing.T) {
	m := fuzzy.NewMatcher()
	got, ok := m.BestMatch("abcd", []string{"abcx", "abcy"})
	assert.True(t, ok)
	assert.Equal(t, "abcx", got)
}
