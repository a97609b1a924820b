package domain

// IsArabicLetter reports whether r is in the Arabic block, excluding the
// Arabic-Indic and Eastern Arabic-Indic digits which route as numbers.
func IsArabicLetter(r rune) bool {
	if r < 0x0600 || r > 0x06FF {
		return false
	}
	return !(r >= 0x0660 && r <= 0x0669) && !(r >= 0x06F0 && r <= 0x06F9)
}

// ContainsArabic reports whether s has any Arabic-script character other than a digit
func ContainsArabic(s string) bool {
	for _, r := range s {
		if IsArabicLetter(r) {
			return true
		}
	}
	return false
}
