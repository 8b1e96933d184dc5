package site

import (
	"log/slog"
	"sync"
)

// Registry holds the current Site and swaps in a new one on reload.
// Readers take the Site once per request and work on that snapshot.
type Registry struct {
	mu     sync.RWMutex
	site   *Site
	dir    string
	opts   []Option
	logger *slog.Logger
}

// NewRegistry creates an empty registry for the content directory dir.
func NewRegistry(dir string, opts ...Option) *Registry {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{dir: dir, opts: opts, logger: o.logger}
}

// Load opens the content directory and makes it current. On error the
// previous site stays in place.
func (r *Registry) Load() error {
	s, err := Open(r.dir, r.opts...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	prev := r.site
	r.site = s
	r.mu.Unlock()

	if prev == nil || prev.Version() != s.Version() {
		c := s.Counts()
		r.logger.Info("content loaded",
			"version", s.Version(), "brands", c.Brands, "products", c.Products,
			"projects", c.Projects, "terms", c.Terms, "snapshot", s.FromSnapshot())
	}
	return nil
}

// Reload reloads the content directory from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Site returns the current site, or ErrNotLoaded before the first Load.
func (r *Registry) Site() (*Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.site == nil {
		return nil, ErrNotLoaded
	}
	return r.site, nil
}

// Version returns the current content version, or "" before the first Load.
func (r *Registry) Version() string {
	s, err := r.Site()
	if err != nil {
		return ""
	}
	return s.Version()
}

// Dir returns the content directory.
func (r *Registry) Dir() string { return r.dir }
