package search

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type termsFile struct {
	Normalize string `yaml:"normalize"`
	Terms     []Term `yaml:"terms"`
}

type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

// ParseTerms parses a terms.yaml document.
func ParseTerms(data []byte) (*TermTable, error) {
	var f termsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse terms: %w", err)
	}
	return NewTermTable(f.Terms, GetNormalizer(f.Normalize))
}

// ParseCategories parses a categories.yaml document.
func ParseCategories(data []byte) (*CategoryTable, error) {
	var f categoriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	return NewCategoryTable(f.Categories)
}

// ParseRelated parses a related.yaml document.
func ParseRelated(data []byte) (RelatedTable, error) {
	var r RelatedTable
	if err := yaml.Unmarshal(data, &r); err != nil {
		return RelatedTable{}, fmt.Errorf("parse related: %w", err)
	}
	return r, nil
}

// LoadTerms reads and parses a terms file.
func LoadTerms(path string) (*TermTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terms %s: %w", path, err)
	}
	t, err := ParseTerms(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadCategories reads and parses a categories file.
func LoadCategories(path string) (*CategoryTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories %s: %w", path, err)
	}
	t, err := ParseCategories(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// LoadRelated reads and parses a related-searches file. A missing file is
// an empty table.
func LoadRelated(path string) (RelatedTable, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return RelatedTable{}, nil
	}
	if err != nil {
		return RelatedTable{}, fmt.Errorf("read related %s: %w", path, err)
	}
	r, err := ParseRelated(data)
	if err != nil {
		return RelatedTable{}, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}
