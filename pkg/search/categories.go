package search

import (
	"fmt"
	"slices"
	"strings"
)

// ProductRef points at a product in a brand's catalog. It may dangle.
type ProductRef struct {
	Brand string `yaml:"brand" json:"brand"`
	Slug  string `yaml:"slug" json:"slug"`
}

// Category is a curated theme grouping projects and products.
type Category struct {
	ID          string       `yaml:"id" json:"id"`
	Label       string       `yaml:"label" json:"label"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Keywords    []string     `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Projects    []string     `yaml:"projects,omitempty" json:"projects,omitempty"`
	Products    []ProductRef `yaml:"products,omitempty" json:"products,omitempty"`
}

type categoryKeys struct {
	label    string
	id       string
	keywords []string
}

// CategoryTable is an immutable, ordered category table.
type CategoryTable struct {
	cats []Category
	keys []categoryKeys
	byID map[string]int
}

// NewCategoryTable validates categories and precomputes their keys.
func NewCategoryTable(cats []Category) (*CategoryTable, error) {
	t := &CategoryTable{
		cats: slices.Clone(cats),
		keys: make([]categoryKeys, len(cats)),
		byID: make(map[string]int, len(cats)),
	}
	for i, c := range t.cats {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("category %d: %w", i, ErrInvalidEntry)
		}
		if _, dup := t.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, c.ID)
		}
		t.byID[c.ID] = i
		t.keys[i] = categoryKeys{
			label:    NormalizeCategory(c.Label),
			id:       NormalizeCategory(c.ID),
			keywords: normalizeAll(NormalizeCategory, c.Keywords),
		}
	}
	return t, nil
}

// Len returns the number of categories.
func (t *CategoryTable) Len() int { return len(t.cats) }

// Categories returns a copy of the table in order.
func (t *CategoryTable) Categories() []Category { return slices.Clone(t.cats) }

// Get returns the category with the given id.
func (t *CategoryTable) Get(id string) (*Category, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	c := t.cats[i]
	return &c, true
}

// Resolve returns the first category matching query. Tiers are tried in
// order, each over the whole table: label equality, id equality, label and
// query containment, then keyword equality or containment.
func (t *CategoryTable) Resolve(query string) (*Category, bool) {
	q := NormalizeCategory(query)
	if q == "" {
		return nil, false
	}
	tiers := []func(categoryKeys) bool{
		func(k categoryKeys) bool { return k.label != "" && k.label == q },
		func(k categoryKeys) bool { return k.id == q },
		func(k categoryKeys) bool { return k.label != "" && overlaps(k.label, q) },
		func(k categoryKeys) bool {
			return slices.ContainsFunc(k.keywords, func(kw string) bool { return overlaps(kw, q) })
		},
	}
	for _, match := range tiers {
		for i, k := range t.keys {
			if match(k) {
				c := t.cats[i]
				return &c, true
			}
		}
	}
	return nil, false
}

// overlaps reports equality or containment in either direction.
func overlaps(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
