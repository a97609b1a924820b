package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDigits maps Arabic-Indic (U+0660..) and Eastern Arabic-Indic (U+06F0..) digits to ASCII.
// runes.Map keeps no state between calls so one value serves every goroutine.
var foldDigits = runes.Map(func(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	return r
})

// FoldDigits converts Arabic-Indic and Eastern Arabic-Indic digits to ASCII digits
func FoldDigits(s string) string {
	out, _, err := transform.String(foldDigits, s)
	if err != nil {
		return s
	}
	return out
}

// canonicalArabic composes combining hamza and madda marks so dictionary lookups see one spelling
func canonicalArabic(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFC, foldDigits), s)
	if err != nil {
		return s
	}
	return out
}

// collapseSpaces trims s and replaces every whitespace run with a single space
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase uppercases the first rune and lowercases the rest
func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return string(unicode.ToUpper(r[0])) + strings.ToLower(string(r[1:]))
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func allASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isASCIIDigit(r) {
			return false
		}
	}
	return true
}
