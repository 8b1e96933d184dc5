package content

import (
	"encoding/json"
	"fmt"
	"os"
)

// Stats reports how many raw records a file held and how many survived
// normalization.
type Stats struct {
	Raw  int `json:"raw"`
	Kept int `json:"kept"`
}

// Dropped is the number of records normalization rejected.
func (s Stats) Dropped() int { return s.Raw - s.Kept }

// DecodeJSON parses data into untyped JSON. Only syntax errors are reported;
// shape problems are left to the normalizers.
func DecodeJSON(data []byte) (any, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return raw, nil
}

// ParseProducts decodes and normalizes a product document.
func ParseProducts(data []byte) ([]Product, Stats, error) {
	raw, err := DecodeJSON(data)
	if err != nil {
		return nil, Stats{}, err
	}
	products := NormalizeProducts(raw)
	return products, Stats{Raw: countProductRecords(raw), Kept: len(products)}, nil
}

// ParseProjects decodes and normalizes a project document.
func ParseProjects(data []byte) ([]Project, Stats, error) {
	raw, err := DecodeJSON(data)
	if err != nil {
		return nil, Stats{}, err
	}
	projects := NormalizeProjects(raw)
	return projects, Stats{Raw: countProjectRecords(raw), Kept: len(projects)}, nil
}

// LoadProductsFile reads and normalizes a product JSON file.
func LoadProductsFile(path string) ([]Product, Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read products %s: %w", path, err)
	}
	products, stats, err := ParseProducts(data)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("products %s: %w", path, err)
	}
	return products, stats, nil
}

// LoadProjectsFile reads and normalizes a project JSON file.
func LoadProjectsFile(path string) ([]Project, Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read projects %s: %w", path, err)
	}
	projects, stats, err := ParseProjects(data)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("projects %s: %w", path, err)
	}
	return projects, stats, nil
}

func countProductRecords(raw any) int {
	if list := asSlice(raw); list != nil {
		return len(list)
	}
	return len(asSlice(asMap(raw)["products"]))
}

func countProjectRecords(raw any) int {
	items := asSlice(raw)
	if items == nil {
		items = asSlice(asMap(raw)["sections"])
	}
	n := 0
	for _, it := range items {
		m := asMap(it)
		if nested, ok := m["projects"]; ok {
			n += len(asSlice(nested))
			continue
		}
		n++
	}
	return n
}
