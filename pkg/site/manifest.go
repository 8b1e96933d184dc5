package site

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest name inside a content directory.
const ManifestFile = "site.yaml"

// SnapshotFile is the normalized gob snapshot written by `showroom build`.
const SnapshotFile = "snapshot.gob"

// Manifest describes a content directory: which brands exist, where their
// product files and feeds live, and where the search tables are.
type Manifest struct {
	Name     string      `yaml:"name" json:"name"`
	Brands   []BrandSpec `yaml:"brands" json:"brands"`
	Projects FileSpec    `yaml:"projects" json:"projects"`
	Search   SearchFiles `yaml:"search" json:"search"`
	MediaDir string      `yaml:"media_dir" json:"media_dir,omitempty"`
	MediaURL string      `yaml:"media_url" json:"media_url,omitempty"`
	PageSize int         `yaml:"page_size" json:"page_size"`

	dir string
}

// BrandSpec is one brand's catalog.
type BrandSpec struct {
	ID       string `yaml:"id" json:"id"`
	Label    string `yaml:"label" json:"label"`
	File     string `yaml:"file" json:"file"`
	FeedURL  string `yaml:"feed_url" json:"feed_url,omitempty"`
	PageSize int    `yaml:"page_size" json:"page_size,omitempty"`
}

// FileSpec is a content file with an optional upstream feed.
type FileSpec struct {
	File    string `yaml:"file" json:"file"`
	FeedURL string `yaml:"feed_url" json:"feed_url,omitempty"`
}

// SearchFiles locates the curated search tables.
type SearchFiles struct {
	Terms      string `yaml:"terms" json:"terms"`
	Categories string `yaml:"categories" json:"categories"`
	Related    string `yaml:"related" json:"related"`
}

// LoadManifest reads dir/site.yaml and fills in defaults.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return ParseManifest(dir, data)
}

// ParseManifest parses a manifest document for content directory dir.
func ParseManifest(dir string, data []byte) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.dir = dir

	seen := make(map[string]bool)
	for i := range m.Brands {
		b := &m.Brands[i]
		if b.ID == "" {
			return nil, fmt.Errorf("manifest %s: brand %d: missing id", path, i)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("manifest %s: duplicate brand %q", path, b.ID)
		}
		seen[b.ID] = true
		if b.Label == "" {
			b.Label = b.ID
		}
		if b.File == "" {
			b.File = filepath.Join("brands", b.ID+".json")
		}
	}
	if m.Projects.File == "" {
		m.Projects.File = "projects.json"
	}
	if m.Search.Terms == "" {
		m.Search.Terms = filepath.Join("search", "terms.yaml")
	}
	if m.Search.Categories == "" {
		m.Search.Categories = filepath.Join("search", "categories.yaml")
	}
	if m.Search.Related == "" {
		m.Search.Related = filepath.Join("search", "related.yaml")
	}
	if m.MediaURL == "" {
		m.MediaURL = "/media/projects"
	}
	return &m, nil
}

// Dir is the content directory the manifest was loaded from.
func (m *Manifest) Dir() string { return m.dir }

// Path resolves a manifest-relative path.
func (m *Manifest) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.dir, rel)
}

// Brand returns the spec of brand id.
func (m *Manifest) Brand(id string) (BrandSpec, bool) {
	for _, b := range m.Brands {
		if b.ID == id {
			return b, true
		}
	}
	return BrandSpec{}, false
}
