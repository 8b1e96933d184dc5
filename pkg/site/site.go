// Package site assembles a content directory into an immutable, queryable
// site: normalized brand catalogs, the project portfolio, the curated search
// tables and the project media index.
package site

import (
	"bytes"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/hazyhaar/showroom/pkg/catalog"
	"github.com/hazyhaar/showroom/pkg/content"
	"github.com/hazyhaar/showroom/pkg/media"
	"github.com/hazyhaar/showroom/pkg/search"
)

// Brand is one brand's normalized catalog.
type Brand struct {
	ID       string
	Label    string
	products []content.Product
	bySlug   map[string]int
	dups     []string
	engine   *catalog.Engine[content.Product]
}

// Site is a fully loaded content directory. It is never mutated after Open;
// reloading builds a new Site.
type Site struct {
	manifest *Manifest
	brands   []*Brand
	byBrand  map[string]*Brand

	projects      []content.Project
	projectBySlug map[string]int
	projectDups   []string
	projectEngine *catalog.Engine[content.Project]

	terms       *search.TermTable
	categories  *search.CategoryTable
	related     search.RelatedTable
	diversifier *search.Diversifier
	media       *media.Index

	version      string
	stats        map[string]content.Stats
	fromSnapshot bool
}

type options struct {
	logger      *slog.Logger
	seed        *uint64
	useSnapshot bool
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger used while loading.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRandSeed makes related-search shuffling reproducible.
func WithRandSeed(seed uint64) Option {
	return func(o *options) { o.seed = &seed }
}

// WithoutSnapshot ignores snapshot.gob and normalizes the JSON files.
func WithoutSnapshot() Option {
	return func(o *options) { o.useSnapshot = false }
}

// loader reads content files and feeds every byte into the version digest.
type loader struct {
	digest *xxhash.Digest
}

func (l *loader) read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l.digest.WriteString(path)
	l.digest.Write(data)
	return data, nil
}

// Open loads the content directory dir. A snapshot.gob next to the manifest
// is preferred over the JSON product and project files.
func Open(dir string, opts ...Option) (*Site, error) {
	o := options{logger: slog.Default(), useSnapshot: true}
	for _, opt := range opts {
		opt(&o)
	}
	l := &loader{digest: xxhash.New()}

	data, err := l.read(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := ParseManifest(dir, data)
	if err != nil {
		return nil, err
	}

	s := &Site{
		manifest: m,
		byBrand:  make(map[string]*Brand),
		stats:    make(map[string]content.Stats),
	}

	var snap *content.Snapshot
	if o.useSnapshot {
		snapPath := filepath.Join(dir, SnapshotFile)
		if data, err := l.read(snapPath); err == nil {
			if snap, err = content.ReadGob(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("snapshot %s: %w", snapPath, err)
			}
			s.fromSnapshot = true
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
	}

	if err := s.loadBrands(l, snap, o.logger); err != nil {
		return nil, err
	}
	if err := s.loadProjects(l, snap, o.logger); err != nil {
		return nil, err
	}
	if err := s.loadSearch(l, o); err != nil {
		return nil, err
	}

	if m.MediaDir != "" {
		if s.media, err = media.Build(m.Path(m.MediaDir), m.MediaURL); err != nil {
			return nil, err
		}
	}

	s.version = fmt.Sprintf("%016x", l.digest.Sum64())
	return s, nil
}

func (s *Site) pageSize(b BrandSpec) int {
	if b.PageSize > 0 {
		return b.PageSize
	}
	return s.defaultPageSize()
}

func (s *Site) defaultPageSize() int {
	if s.manifest.PageSize > 0 {
		return s.manifest.PageSize
	}
	return catalog.DefaultPageSize
}

func (s *Site) loadBrands(l *loader, snap *content.Snapshot, logger *slog.Logger) error {
	fromSnap := make(map[string][]content.Product)
	if snap != nil {
		for _, bp := range snap.Brands {
			fromSnap[bp.Brand] = bp.Products
		}
	}

	for _, spec := range s.manifest.Brands {
		products, ok := fromSnap[spec.ID]
		if !ok {
			if snap != nil {
				logger.Warn("brand missing from snapshot, reading json", "brand", spec.ID)
			}
			path := s.manifest.Path(spec.File)
			data, err := l.read(path)
			if err != nil {
				return fmt.Errorf("brand %s: %w", spec.ID, err)
			}
			var stats content.Stats
			products, stats, err = content.ParseProducts(data)
			if err != nil {
				return fmt.Errorf("brand %s: %w", spec.ID, err)
			}
			s.stats[spec.File] = stats
			if stats.Dropped() > 0 {
				logger.Warn("invalid products dropped", "brand", spec.ID, "dropped", stats.Dropped(), "kept", stats.Kept)
			}
			for i := range products {
				products[i].Brand = spec.ID
			}
		}

		b := &Brand{
			ID:       spec.ID,
			Label:    spec.Label,
			products: products,
			bySlug:   make(map[string]int, len(products)),
			engine:   newProductEngine(s.pageSize(spec)),
		}
		slugs := make([]string, len(products))
		for i, p := range products {
			slugs[i] = p.Slug
			if _, dup := b.bySlug[p.Slug]; !dup {
				b.bySlug[p.Slug] = i
			}
		}
		if b.dups = content.DuplicateSlugs(slugs); b.dups != nil {
			logger.Warn("duplicate product slugs", "brand", spec.ID, "slugs", b.dups)
		}
		s.brands = append(s.brands, b)
		s.byBrand[b.ID] = b
	}
	return nil
}

func (s *Site) loadProjects(l *loader, snap *content.Snapshot, logger *slog.Logger) error {
	if snap != nil {
		s.projects = snap.Projects
	} else {
		path := s.manifest.Path(s.manifest.Projects.File)
		data, err := l.read(path)
		switch {
		case os.IsNotExist(err):
			logger.Info("no projects file", "path", path)
		case err != nil:
			return fmt.Errorf("projects: %w", err)
		default:
			projects, stats, err := content.ParseProjects(data)
			if err != nil {
				return fmt.Errorf("projects: %w", err)
			}
			s.projects = projects
			s.stats[s.manifest.Projects.File] = stats
			if stats.Dropped() > 0 {
				logger.Warn("invalid projects dropped", "dropped", stats.Dropped(), "kept", stats.Kept)
			}
		}
	}

	s.projectEngine = newProjectEngine(s.defaultPageSize())
	s.projectBySlug = make(map[string]int, len(s.projects))
	slugs := make([]string, len(s.projects))
	for i, p := range s.projects {
		slugs[i] = p.Slug
		if _, dup := s.projectBySlug[p.Slug]; !dup {
			s.projectBySlug[p.Slug] = i
		}
	}
	if s.projectDups = content.DuplicateSlugs(slugs); s.projectDups != nil {
		logger.Warn("duplicate project slugs", "slugs", s.projectDups)
	}
	return nil
}

func (s *Site) loadSearch(l *loader, o options) error {
	m := s.manifest

	data, err := l.read(m.Path(m.Search.Terms))
	if err != nil {
		return fmt.Errorf("terms: %w", err)
	}
	if s.terms, err = search.ParseTerms(data); err != nil {
		return fmt.Errorf("terms %s: %w", m.Search.Terms, err)
	}

	data, err = l.read(m.Path(m.Search.Categories))
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	if s.categories, err = search.ParseCategories(data); err != nil {
		return fmt.Errorf("categories %s: %w", m.Search.Categories, err)
	}

	data, err = l.read(m.Path(m.Search.Related))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("related: %w", err)
	default:
		if s.related, err = search.ParseRelated(data); err != nil {
			return fmt.Errorf("related %s: %w", m.Search.Related, err)
		}
	}

	var src rand.Source
	if o.seed != nil {
		src = rand.NewPCG(*o.seed, *o.seed)
	}
	s.diversifier = search.NewDiversifier(s.terms, s.related, src)
	return nil
}

// Manifest returns the manifest the site was loaded from.
func (s *Site) Manifest() *Manifest { return s.manifest }

// Version identifies the loaded content. It changes whenever any loaded
// file changes.
func (s *Site) Version() string { return s.version }

// FromSnapshot reports whether catalogs came from snapshot.gob.
func (s *Site) FromSnapshot() bool { return s.fromSnapshot }

// Stats returns per-file normalization stats, keyed by manifest path.
// Files read from the snapshot have no entry.
func (s *Site) Stats() map[string]content.Stats {
	out := make(map[string]content.Stats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// Counts summarizes what a site holds.
type Counts struct {
	Brands     int `json:"brands"`
	Products   int `json:"products"`
	Projects   int `json:"projects"`
	Terms      int `json:"terms"`
	Categories int `json:"categories"`
	Media      int `json:"media"`
}

// Counts returns the size of every loaded table.
func (s *Site) Counts() Counts {
	c := Counts{
		Brands:     len(s.brands),
		Projects:   len(s.projects),
		Terms:      s.terms.Len(),
		Categories: s.categories.Len(),
		Media:      s.media.Len(),
	}
	for _, b := range s.brands {
		c.Products += len(b.products)
	}
	return c
}

// Snapshot returns the normalized catalogs in snapshot form.
func (s *Site) Snapshot() *content.Snapshot {
	snap := &content.Snapshot{Projects: s.projects}
	for _, b := range s.brands {
		snap.Brands = append(snap.Brands, content.BrandProducts{Brand: b.ID, Products: b.products})
	}
	return snap
}

// BuildSnapshot normalizes the JSON content of dir and writes snapshot.gob.
func BuildSnapshot(dir string, opts ...Option) (*Site, error) {
	s, err := Open(dir, append(opts, WithoutSnapshot())...)
	if err != nil {
		return nil, err
	}
	if err := content.SaveGob(s.Snapshot(), filepath.Join(dir, SnapshotFile)); err != nil {
		return nil, err
	}
	return s, nil
}
