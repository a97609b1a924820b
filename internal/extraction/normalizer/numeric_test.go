package normalizer_test

import (
	"testing"

	"github.com/formflow/formflow-backend/internal/extraction/normalizer"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"arabic-indic digits", "١٢٣", "123"},
		{"eastern arabic-indic digits", "۴۵", "45"},
		{"letter o inside number", "1O5", "105"},
		{"mixed confusions", "8S-l2", "85-12"},
		{"spaces between digit groups", "12 34", "1234"},
		{"repeated groups", "1 2 3", "123"},
		{"adjacent word untouched", "Black 12", "Black 12"},
		{"model number", "CE285A", "CE285A"},
		{"space after word kept", "No 5", "No 5"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizer.NormalizeNumber(tt.in); got != tt.want {
				t.Errorf("NormalizeNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
