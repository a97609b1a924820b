package normalizer_test

import (
	"testing"

	"github.com/formflow/formflow-backend/internal/extraction/normalizer"
)

func TestNormalizeEmployeeID(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantValue   string
		wantOutcome normalizer.Outcome
	}{
		{"canonical", "KR147378", "KR147378", normalizer.Unchanged},
		{"trimmed canonical", "  AB12345 ", "AB12345", normalizer.Unchanged},
		{"lowercase letters and space", "kr 147378", "KR147378", normalizer.Corrected},
		{"ocr letters in digits", "AB12O4", "AB1204", normalizer.Corrected},
		{"pipe and lowercase l", "X|2l4", "X1214", normalizer.Corrected},
		{"leading digits read as letters", "812345", "BI2345", normalizer.Corrected},
		{"at most three reinterpreted", "1058123", "IOS8123", normalizer.Corrected},
		{"first digit not letter-like", "2345", "2345", normalizer.Rejected},
		{"all digits letter-like", "808", "808", normalizer.Rejected},
		{"punctuation never partially fixed", "AB-12O", "AB-12O", normalizer.Rejected},
		{"too many letters", "ABCD123", "ABCD123", normalizer.Rejected},
		{"empty", "", "", normalizer.Unchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizer.NormalizeEmployeeID(tt.in)
			if got.Value != tt.wantValue {
				t.Errorf("NormalizeEmployeeID(%q).Value = %q, want %q", tt.in, got.Value, tt.wantValue)
			}
			if got.Outcome != tt.wantOutcome {
				t.Errorf("NormalizeEmployeeID(%q).Outcome = %v, want %v", tt.in, got.Outcome, tt.wantOutcome)
			}
		})
	}
}
