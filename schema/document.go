package schema

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Document is a parsed enum specification document: a mapping of enum
// name to EnumSpec plus document-level metadata. Immutable after loading.
type Document struct {
	ID       string               `yaml:"id,omitempty" json:"id,omitempty"`
	Name     string               `yaml:"name,omitempty" json:"name,omitempty"`
	Prefixes map[string]string    `yaml:"prefixes,omitempty" json:"prefixes,omitempty"`
	Enums    map[string]*EnumSpec `yaml:"enums" json:"enums"`
}

// Parse decodes and validates an enum specification document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	if len(doc.Enums) == 0 {
		return nil, fmt.Errorf("schema document contains no enums")
	}
	for name, spec := range doc.Enums {
		if spec == nil {
			doc.Enums[name] = &EnumSpec{Name: name}
			continue
		}
		spec.Name = name
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("enum %s: %w", name, err)
		}
	}
	return &doc, nil
}

// Load reads and parses an enum specification document from a file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// EnumNames returns the names of all enums in the document, sorted.
func (d *Document) EnumNames() []string {
	names := make([]string, 0, len(d.Enums))
	for name := range d.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
