// Package media indexes the image galleries of portfolio projects.
//
// The index is built once when the site loads and handed to whoever needs
// it; nothing here is cached behind package state.
package media

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

var imageExts = []string{".jpg", ".jpeg", ".png", ".webp", ".avif"}

// Index maps a project slug to the URLs of its images.
type Index struct {
	prefix string
	files  map[string][]string
}

// Build scans root/<slug>/ for image files. URLs are urlPrefix/<slug>/<file>,
// sorted by file name. A missing root yields an empty index.
func Build(root, urlPrefix string) (*Index, error) {
	ix := &Index{prefix: urlPrefix, files: make(map[string][]string)}
	if root == "" {
		return ix, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return ix, nil
		}
		return nil, fmt.Errorf("read media dir %s: %w", root, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		slug := entry.Name()
		files, err := os.ReadDir(filepath.Join(root, slug))
		if err != nil {
			return nil, fmt.Errorf("read media dir %s: %w", slug, err)
		}
		var urls []string
		for _, f := range files {
			if f.IsDir() || !isImage(f.Name()) {
				continue
			}
			urls = append(urls, path.Join(urlPrefix, slug, f.Name()))
		}
		if len(urls) > 0 {
			slices.Sort(urls)
			ix.files[slug] = urls
		}
	}
	return ix, nil
}

func isImage(name string) bool {
	return slices.Contains(imageExts, strings.ToLower(filepath.Ext(name)))
}

// Lookup returns the image URLs for slug, or nil.
func (ix *Index) Lookup(slug string) []string {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.files[slug])
}

// Len returns the number of projects with at least one image.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.files)
}
