package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dateOCRFixes = strings.NewReplacer(
		"O", "0", "o", "0",
		"l", "1", "I", "1", "|", "1",
		"S", "5", "s", "5",
		"Z", "2", "z", "2",
	)
	dateDelimiters = regexp.MustCompile(`[/.\s]+`)
	yearFirst      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	dayFirst       = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{2,4})$`)
	digitRuns      = regexp.MustCompile(`\d+`)
)

// NormalizeDate rewrites an OCR'd date as YYYY-MM-DD. Input that cannot be
// read as a real calendar date is returned unchanged.
func NormalizeDate(input string) string {
	str := strings.TrimSpace(input)
	if str == "" {
		return input
	}

	str = FoldDigits(str)
	str = dateOCRFixes.Replace(str)
	str = dateDelimiters.ReplaceAllString(str, "-")

	if m := yearFirst.FindStringSubmatch(str); m != nil {
		if out, ok := buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3])); ok {
			return out
		}
	}

	if m := dayFirst.FindStringSubmatch(str); m != nil {
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year = pivotYear(year)
		}
		if out, ok := buildDate(year, atoi(m[2]), atoi(m[1])); ok {
			return out
		}
	}

	nums := digitRuns.FindAllString(str, -1)
	if len(nums) == 3 {
		n1, n2, n3 := atoi(nums[0]), atoi(nums[1]), atoi(nums[2])
		orders := [][3]int{
			{n1, n2, n3}, // Y-M-D
			{n3, n2, n1}, // D-M-Y
			{n3, n1, n2}, // M-D-Y
		}
		for _, o := range orders {
			y := o[0]
			if y < 100 {
				y = pivotYear(y)
			}
			if validDate(y, o[1], o[2]) {
				return formatDate(y, o[1], o[2])
			}
		}
	}

	return input
}

// buildDate swaps month and day when the month cannot be one, then validates
func buildDate(year, month, day int) (string, bool) {
	if month > 12 && day <= 12 {
		month, day = day, month
	}
	if !validDate(year, month, day) {
		return "", false
	}
	return formatDate(year, month, day), true
}

// pivotYear expands a two-digit year: below 50 is this century, the rest the last
func pivotYear(y int) int {
	if y < 50 {
		return 2000 + y
	}
	return 1900 + y
}

// validDate rejects dates that do not survive a calendar round trip, such as 31 April
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func formatDate(year, month, day int) string {
	return fmt.Sprintf("%d-%02d-%02d", year, month, day)
}

// atoi returns -1 for runs too long to be a date component
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
