package normalizer

import (
	"strings"

	"github.com/formflow/formflow-backend/internal/extraction/dictionary"
	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/formflow/formflow-backend/internal/extraction/fuzzy"
)

// ArabicCorrector fixes Arabic-script values against the closed dictionaries
type ArabicCorrector struct {
	matcher *fuzzy.Matcher
	dict    *dictionary.Dictionaries
}

// NewArabicCorrector creates a corrector sharing matcher's distance cache
func NewArabicCorrector(matcher *fuzzy.Matcher, dict *dictionary.Dictionaries) *ArabicCorrector {
	return &ArabicCorrector{matcher: matcher, dict: dict}
}

// Correct returns the corrected value and the reason when it changed.
// Department values are matched whole; person names token by token.
func (c *ArabicCorrector) Correct(field domain.Field, value string) (string, string) {
	original := value
	out := strings.ReplaceAll(canonicalArabic(value), "،", ",")
	reason := domain.ReasonCommon

	switch {
	case field == domain.FieldDepartment:
		if match, ok := c.matcher.BestMatch(out, c.dict.Departments()); ok && match != out {
			out = match
			reason = domain.ReasonDictionary
		}
	case field.IsPersonName():
		tokens := strings.Fields(out)
		for i, tok := range tokens {
			if match, ok := c.matcher.BestMatch(tok, c.dict.Names()); ok {
				tokens[i] = match
			}
		}
		if joined := strings.Join(tokens, " "); joined != out {
			out = joined
			reason = domain.ReasonDictionary
		}
	}

	if out == original {
		return original, ""
	}
	return out, reason
}
