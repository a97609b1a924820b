package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
)

// Issue messages. The UI groups on these strings.
const (
	MsgEmpty       = "Empty field"
	MsgPlaceholder = "Placeholder detected"
	MsgDateFormat  = "Invalid date format"
	MsgEmployeeID  = "Format: 1-3 letters + numbers"
	MsgNameShort   = "Name too short"
	MsgLowercase   = "All lowercase"
	MsgDigitInName = "Number in name"
	MsgInkChars    = "Invalid characters"
)

// Issue codes, one per rule
const (
	CodeLowConfidence = "low_confidence"
	CodeEmpty         = "empty"
	CodePlaceholder   = "placeholder"
	CodeDateFormat    = "date_format"
	CodeEmployeeID    = "employee_id_format"
	CodeNameShort     = "name_too_short"
	CodeLowercase     = "all_lowercase"
	CodeDigitInName   = "digit_in_name"
	CodeInkChars      = "invalid_characters"
)

// placeholders are tokens OCR models emit instead of a value
var placeholders = []string{"n/a", "null", "undefined", "not found", "missing", "none", "?", "illegible"}

var (
	datePattern       = regexp.MustCompile(`^\d{1,4}[-/.\s]\d{1,2}[-/.\s]\d{1,4}$`)
	employeeIDPattern = regexp.MustCompile(`^[A-Za-z]{1,3}\d+$`)
	inkNumberPattern  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	hasLatinLower     = regexp.MustCompile(`[a-z]`)
	hasDigit          = regexp.MustCompile(`\d`)
)

// minPrinterNameLen is the shortest printer name not flagged as truncated
const minPrinterNameLen = 5

func lowConfidenceMessage(c float64) string {
	return fmt.Sprintf("Low confidence (%d%%)", int(math.Round(c*100)))
}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, p := range placeholders {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// rule is the outcome of a failed structural check
type rule struct {
	category domain.IssueCategory
	code     string
	message  string
}

// structural runs the field-specific check. Only reached when the generic checks passed.
func structural(field domain.Field, value string) (rule, bool) {
	switch field {
	case domain.FieldDate:
		if !datePattern.MatchString(value) {
			return rule{domain.IssueFormat, CodeDateFormat, MsgDateFormat}, true
		}
	case domain.FieldEmployeeID:
		if !employeeIDPattern.MatchString(value) {
			return rule{domain.IssueFormat, CodeEmployeeID, MsgEmployeeID}, true
		}
	case domain.FieldPrinterName:
		if utf8.RuneCountInString(value) < minPrinterNameLen {
			return rule{domain.IssueLowConfidence, CodeNameShort, MsgNameShort}, true
		}
		if !domain.ContainsArabic(value) && value == strings.ToLower(value) && hasLatinLower.MatchString(value) {
			return rule{domain.IssueLowConfidence, CodeLowercase, MsgLowercase}, true
		}
	case domain.FieldRecipientName, domain.FieldDelivererName:
		if hasDigit.MatchString(value) {
			return rule{domain.IssueFormat, CodeDigitInName, MsgDigitInName}, true
		}
	case domain.FieldInkNumber:
		if !inkNumberPattern.MatchString(value) {
			return rule{domain.IssueFormat, CodeInkChars, MsgInkChars}, true
		}
	}
	return rule{}, false
}
