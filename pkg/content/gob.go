package content

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BrandProducts is the normalized product table of one brand.
type BrandProducts struct {
	Brand    string
	Products []Product
}

// Snapshot is the normalized content of a whole site, serialized by
// `showroom build` so that serving does not re-normalize JSON on start.
type Snapshot struct {
	Brands   []BrandProducts
	Projects []Project
}

// LoadGob deserializes a snapshot from a gob-encoded file.
func LoadGob(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()
	return ReadGob(f)
}

// ReadGob decodes a snapshot from r.
func ReadGob(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return &s, nil
}

// SaveGob serializes a snapshot to path. The file is written next to its
// destination and renamed into place.
func SaveGob(s *Snapshot, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.gob")
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(s); err != nil {
		tmp.Close()
		return fmt.Errorf("encode gob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close gob file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename gob file: %w", err)
	}
	return nil
}
