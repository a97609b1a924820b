package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// digitLike matches runs of digits and the letters OCR confuses with them
var digitLike = regexp.MustCompile(`[0-9OoDdQqIiLl|ZzSsGgBb]+`)

var numericOCRFixes = strings.NewReplacer(
	"O", "0", "o", "0", "D", "0", "d", "0", "Q", "0", "q", "0",
	"I", "1", "i", "1", "L", "1", "l", "1", "|", "1",
	"Z", "2", "z", "2",
	"S", "5", "s", "5",
	"G", "6", "g", "6",
	"B", "8", "b", "8",
)

// NormalizeNumber cleans numeric fields such as the ink number. Letter fixes
// are applied only inside runs that already hold a real digit, so words next
// to the number are left alone.
func NormalizeNumber(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return input
	}

	out := FoldDigits(trimmed)
	out = digitLike.ReplaceAllStringFunc(out, func(run string) string {
		if !strings.ContainsAny(run, "0123456789") {
			return run
		}
		return numericOCRFixes.Replace(run)
	})

	return joinDigitGroups(out)
}

// joinDigitGroups drops whitespace that sits between two digits
func joinDigitGroups(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(r); i++ {
		if unicode.IsSpace(r[i]) && i > 0 && isASCIIDigit(r[i-1]) {
			j := i
			for j < len(r) && unicode.IsSpace(r[j]) {
				j++
			}
			if j < len(r) && isASCIIDigit(r[j]) {
				i = j - 1
				continue
			}
		}
		b.WriteRune(r[i])
	}
	return b.String()
}
