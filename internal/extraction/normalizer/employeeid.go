package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// Outcome tags what a normalizer did with its input
type Outcome int

const (
	// Unchanged means the input already had the canonical shape
	Unchanged Outcome = iota
	// Corrected means OCR fixes produced a canonical value
	Corrected
	// Rejected means no canonical value could be produced; the trimmed input is kept
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Corrected:
		return "corrected"
	case Rejected:
		return "rejected"
	default:
		return "unchanged"
	}
}

// EmployeeIDResult is the value produced by NormalizeEmployeeID and how it was reached
type EmployeeIDResult struct {
	Value   string
	Outcome Outcome
}

// maxIDLetters is how many leading characters may be reinterpreted as letters
const maxIDLetters = 3

var (
	employeeIDShape = regexp.MustCompile(`^[A-Za-z]{1,3}\d+$`)
	leadingLetters  = regexp.MustCompile(`^([A-Za-z]{1,3})(.+)$`)
	digitsAsLetters = map[rune]rune{'0': 'O', '1': 'I', '5': 'S', '8': 'B'}
	lettersAsDigits = strings.NewReplacer("O", "0", "o", "0", "I", "1", "l", "1", "|", "1", "S", "5", "s", "5", "B", "8", "Z", "2")
)

// NormalizeEmployeeID coerces a value into 1-3 letters followed by digits.
// It never applies a partial correction: anything that does not end up in
// canonical shape comes back as the trimmed input with a Rejected outcome.
func NormalizeEmployeeID(input string) EmployeeIDResult {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return EmployeeIDResult{Value: input, Outcome: Unchanged}
	}

	result := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, trimmed)

	if allASCIIDigits(result) {
		result = reinterpretLeadingDigits(result)
	} else if m := leadingLetters.FindStringSubmatch(result); m != nil {
		result = strings.ToUpper(m[1]) + lettersAsDigits.Replace(m[2])
	}

	if !employeeIDShape.MatchString(result) {
		return EmployeeIDResult{Value: trimmed, Outcome: Rejected}
	}
	if result == trimmed {
		return EmployeeIDResult{Value: result, Outcome: Unchanged}
	}
	return EmployeeIDResult{Value: result, Outcome: Corrected}
}

// reinterpretLeadingDigits turns up to maxIDLetters leading letter-like digits
// into letters, stopping at the first digit that has no letter reading.
// At least one digit must remain afterwards.
func reinterpretLeadingDigits(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) && i < maxIDLetters {
		l, ok := digitsAsLetters[rune(s[i])]
		if !ok {
			break
		}
		b.WriteRune(l)
		i++
	}
	if i == 0 || i == len(s) {
		return s
	}
	return b.String() + s[i:]
}
