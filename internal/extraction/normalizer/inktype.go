package normalizer

import (
	"strings"

	"github.com/formflow/formflow-backend/internal/extraction/dictionary"
)

var inkOCRFixes = strings.NewReplacer("0", "O", "1", "I", "5", "S", "8", "B", "|", "I")

// InkTypeNormalizer maps OCR'd ink type labels onto the canonical ink types
type InkTypeNormalizer struct {
	dict *dictionary.Dictionaries
}

// NewInkTypeNormalizer creates an ink type normalizer backed by dict
func NewInkTypeNormalizer(dict *dictionary.Dictionaries) *InkTypeNormalizer {
	return &InkTypeNormalizer{dict: dict}
}

// Normalize returns the canonical ink type for input. Exact variants win,
// then substring containment in either direction in dictionary order.
// Unknown labels come back trimmed in title case.
func (n *InkTypeNormalizer) Normalize(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return input
	}

	key := inkOCRFixes.Replace(collapseSpaces(strings.ToUpper(trimmed)))

	if canonical, ok := n.dict.LookupInk(key); ok {
		return canonical
	}

	for _, v := range n.dict.InkTypes() {
		if strings.Contains(key, v.Key) || strings.Contains(v.Key, key) {
			return v.Canonical
		}
	}

	return titleCase(trimmed)
}
