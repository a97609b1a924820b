package dictionary_test

import (
	"testing"
	"testing/fstest"

	"github.com/formflow/formflow-backend/internal/extraction/dictionary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d, err := dictionary.Default()
	require.NoError(t, err)

	assert.Len(t, d.Departments(), 26)
	assert.Equal(t, "الطوارئ", d.Departments()[0])
	assert.Len(t, d.Names(), 39)
	assert.Contains(t, d.Names(), "عبدالله")

	inks := d.InkTypes()
	require.NotEmpty(t, inks)
	assert.Equal(t, dictionary.InkVariant{Key: "ORIGINAL", Canonical: "Original"}, inks[0])

	c, ok := d.LookupInk("C10")
	assert.True(t, ok)
	assert.Equal(t, "Compatible", c)

	c, ok = d.LookupInk("010")
	assert.True(t, ok)
	assert.Equal(t, "Original", c)
}

func TestLoad_FromCustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"d/departments.yaml": {Data: []byte("departments: [Radiology, Radiology, Pharmacy]\n")},
		"d/names.yaml":       {Data: []byte("names: [Anna]\n")},
		"d/ink_types.yaml":   {Data: []byte("ink_types:\n  - canonical: Original\n    variants: [orig]\n")},
	}

	d, err := dictionary.Load(fsys, "d")
	require.NoError(t, err)

	assert.Equal(t, []string{"Radiology", "Pharmacy"}, d.Departments())
	c, ok := d.LookupInk("ORIG")
	assert.True(t, ok)
	assert.Equal(t, "Original", c)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "missing file",
			fsys: fstest.MapFS{"d/departments.yaml": {Data: []byte("departments: [A]")}},
		},
		{
			name: "malformed yaml",
			fsys: fstest.MapFS{
				"d/departments.yaml": {Data: []byte("departments: [A")},
				"d/names.yaml":       {Data: []byte("names: [B]")},
				"d/ink_types.yaml":   {Data: []byte("ink_types: []")},
			},
		},
		{
			name: "empty vocabulary",
			fsys: fstest.MapFS{
				"d/departments.yaml": {Data: []byte("departments: []")},
				"d/names.yaml":       {Data: []byte("names: [B]")},
				"d/ink_types.yaml":   {Data: []byte("ink_types:\n  - canonical: X\n    variants: [X]\n")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dictionary.Load(tt.fsys, "d")
			assert.Error(t, err)
		})
	}
}
