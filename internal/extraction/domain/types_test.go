package domain_test

import (
	"testing"

	"github.com/formflow/formflow-backend/internal/extraction/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{500, "500 Bytes"},
		{1536, "1.5 KB"},
		{1300, "1.27 KB"},
		{1048576, "1 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.FormatSize(tt.bytes))
	}
}

func TestFieldValid(t *testing.T) {
	assert.Len(t, domain.Fields, 8)
	for _, f := range domain.Fields {
		assert.True(t, f.Valid(), f)
	}
	assert.False(t, domain.Field("Signature").Valid())
}

func TestRowID(t *testing.T) {
	assert.Equal(t, "doc1_row_3", domain.RowID("doc1", 3))
}

func TestRowClone_IsDeep(t *testing.T) {
	r := domain.Row{
		ID:         "r",
		Values:     map[domain.Field]string{domain.FieldDate: "2024-01-05"},
		Confidence: map[domain.Field]float64{domain.FieldDate: 0.9},
	}
	c := r.Clone()
	c.Values[domain.FieldDate] = "changed"
	c.Confidence[domain.FieldDate] = 0.1

	assert.Equal(t, "2024-01-05", r.Values[domain.FieldDate])
	assert.Equal(t, 0.9, r.Confidence[domain.FieldDate])
	assert.Nil(t, c.Boxes)
}

func TestContainsArabic(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"الطوارئ", true},
		{"HP محمد", true},
		{"٢٠٢٤-١-٥", false},
		{"۱۲۳", false},
		{"Original", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ContainsArabic(tt.in), tt.in)
	}
}
