package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type overridesFile struct {
	Overrides map[string]int `yaml:"overrides"`
}

// LoadOverrides reads the identity override table from a YAML file of the form
//
//	overrides:
//	  "Hindhaugh, Robert": 849
func LoadOverrides(path string) (map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides %s: %w", path, err)
	}
	return ParseOverrides(raw)
}

// ParseOverrides decodes the YAML override document.
func ParseOverrides(raw []byte) (map[string]int, error) {
	var doc overridesFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse overrides: %w", err)
	}
	for name, id := range doc.Overrides {
		if id <= 0 {
			return nil, fmt.Errorf("override %q: employee id must be positive", name)
		}
	}
	if doc.Overrides == nil {
		doc.Overrides = map[string]int{}
	}
	return doc.Overrides, nil
}

// MergeOverrides layers the given tables; later tables win.
func MergeOverrides(tables ...map[string]int) map[string]int {
	out := make(map[string]int)
	for _, table := range tables {
		for name, id := range table {
			out[name] = id
		}
	}
	return out
}
