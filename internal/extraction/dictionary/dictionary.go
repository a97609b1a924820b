// Package dictionary loads the closed vocabularies used by the field normalizers.
package dictionary

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed assets/*.yaml
var assets embed.FS

// InkVariant maps an OCR spelling to its canonical ink type
type InkVariant struct {
	Key       string
	Canonical string
}

// Dictionaries holds the immutable vocabularies. Safe to share between goroutines.
type Dictionaries struct {
	departments []string
	names       []string
	inkTypes    []InkVariant
	inkIndex    map[string]string
}

type departmentsFile struct {
	Departments []string `yaml:"departments"`
}

type namesFile struct {
	Names []string `yaml:"names"`
}

type inkTypesFile struct {
	InkTypes []struct {
		Canonical string   `yaml:"canonical"`
		Variants  []string `yaml:"variants"`
	} `yaml:"ink_types"`
}

// Default loads the dictionaries compiled into the binary
func Default() (*Dictionaries, error) {
	return Load(assets, "assets")
}

// MustDefault is Default for use in package initialisation and tests
func MustDefault() *Dictionaries {
	d, err := Default()
	if err != nil {
		panic(err)
	}
	return d
}

// LoadDir loads dictionaries from a directory on disk, for deployments that localize the vocabularies
func LoadDir(dir string) (*Dictionaries, error) {
	return Load(os.DirFS(dir), ".")
}

// Load reads departments.yaml, names.yaml and ink_types.yaml from fsys under dir
func Load(fsys fs.FS, dir string) (*Dictionaries, error) {
	var deps departmentsFile
	if err := decode(fsys, dir, "departments.yaml", &deps); err != nil {
		return nil, err
	}

	var names namesFile
	if err := decode(fsys, dir, "names.yaml", &names); err != nil {
		return nil, err
	}

	var inks inkTypesFile
	if err := decode(fsys, dir, "ink_types.yaml", &inks); err != nil {
		return nil, err
	}

	d := &Dictionaries{
		departments: dedupe(deps.Departments),
		names:       dedupe(names.Names),
		inkIndex:    make(map[string]string),
	}

	for _, group := range inks.InkTypes {
		if group.Canonical == "" {
			return nil, fmt.Errorf("dictionary: ink type group without canonical value")
		}
		for _, v := range group.Variants {
			key := strings.ToUpper(strings.TrimSpace(v))
			if key == "" {
				continue
			}
			if _, seen := d.inkIndex[key]; seen {
				continue
			}
			d.inkIndex[key] = group.Canonical
			d.inkTypes = append(d.inkTypes, InkVariant{Key: key, Canonical: group.Canonical})
		}
	}

	if len(d.departments) == 0 || len(d.names) == 0 || len(d.inkTypes) == 0 {
		return nil, fmt.Errorf("dictionary: empty vocabulary in %s", dir)
	}

	return d, nil
}

func decode(fsys fs.FS, dir, name string, out interface{}) error {
	b, err := fs.ReadFile(fsys, path.Join(dir, name))
	if err != nil {
		return fmt.Errorf("dictionary: read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("dictionary: parse %s: %w", name, err)
	}
	return nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Departments returns the department names in file order
func (d *Dictionaries) Departments() []string { return d.departments }

// Names returns the name tokens in file order
func (d *Dictionaries) Names() []string { return d.names }

// InkTypes returns the ink variants in file order
func (d *Dictionaries) InkTypes() []InkVariant { return d.inkTypes }

// LookupInk returns the canonical ink type for an exact (uppercase) variant
func (d *Dictionaries) LookupInk(key string) (string, bool) {
	c, ok := d.inkIndex[key]
	return c, ok
}
