// Package importer refreshes content files from upstream JSON feeds.
//
// A feed body is validated with the same normalizer the site loader uses and
// only replaces the content file when it yields at least one record. The
// replacement is an atomic rename, so a running server reloading on SIGHUP
// never sees a partial file.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hazyhaar/showroom/pkg/content"
	"github.com/hazyhaar/showroom/pkg/site"
	"github.com/panjf2000/ants/v2"
)

var (
	// ErrNoURL is returned for a feed with no configured source URL.
	ErrNoURL = errors.New("no source url")
	// ErrEmptyFeed is returned when a feed yields no valid records.
	ErrEmptyFeed = errors.New("feed has no valid records")
)

// Result reports one completed import.
type Result struct {
	Feed  string        `json:"feed"`
	URL   string        `json:"url"`
	File  string        `json:"file"`
	Stats content.Stats `json:"stats"`
}

// Importer downloads feeds into a content directory.
type Importer struct {
	manifest *site.Manifest
	feeds    []Feed
	sources  *SourceDB
	logger   *slog.Logger
	client   *http.Client
	workers  int
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the importer logger.
func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// WithHTTPClient replaces the download client.
func WithHTTPClient(c *http.Client) Option {
	return func(im *Importer) { im.client = c }
}

// WithWorkers bounds the number of concurrent downloads in ImportAll.
func WithWorkers(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.workers = n
		}
	}
}

// New creates an importer for the manifest's feeds and seeds sources with
// them. sources may be nil, in which case manifest URLs are used as is.
func New(m *site.Manifest, sources *SourceDB, opts ...Option) (*Importer, error) {
	im := &Importer{
		manifest: m,
		feeds:    Feeds(m),
		sources:  sources,
		logger:   slog.Default(),
		client:   &http.Client{Timeout: 5 * time.Minute},
		workers:  4,
	}
	for _, opt := range opts {
		opt(im)
	}
	if sources != nil {
		if err := sources.Seed(im.feeds); err != nil {
			return nil, err
		}
	}
	return im, nil
}

// Feeds returns the importer's feeds.
func (im *Importer) Feeds() []Feed { return im.feeds }

// URL returns the source URL for a feed: the source DB entry when present,
// the manifest default otherwise.
func (im *Importer) URL(f Feed) (string, error) {
	if im.sources != nil {
		url, err := im.sources.GetURL(f.ID)
		if err != nil {
			return "", err
		}
		if url != "" {
			return url, nil
		}
	}
	return f.DefaultURL, nil
}

// Import downloads the feed with the given id from its configured URL.
func (im *Importer) Import(ctx context.Context, id string) (*Result, error) {
	f, err := FindFeed(im.feeds, id)
	if err != nil {
		return nil, err
	}
	url, err := im.URL(f)
	if err != nil {
		return nil, err
	}
	if url == "" {
		return nil, fmt.Errorf("import %s: %w", f.ID, ErrNoURL)
	}
	return im.ImportURL(ctx, f, url)
}

// ImportURL downloads f from url, validates it and renames it over the
// content file.
func (im *Importer) ImportURL(ctx context.Context, f Feed, url string) (*Result, error) {
	target := im.manifest.Path(f.File)
	tmp, err := tempFileNear(target)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", f.ID, err)
	}
	defer os.Remove(tmp)

	im.logger.Info("import started", "feed", f.ID, "url", url)
	if err := downloadFile(ctx, im.client, url, tmp); err != nil {
		return nil, fmt.Errorf("import %s: %w", f.ID, err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", f.ID, err)
	}
	st, err := validate(f.Kind, data)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", f.ID, err)
	}
	if st.Kept == 0 {
		return nil, fmt.Errorf("import %s: %w (%d raw)", f.ID, ErrEmptyFeed, st.Raw)
	}

	if err := os.Rename(tmp, target); err != nil {
		return nil, fmt.Errorf("import %s: replace %s: %w", f.ID, f.File, err)
	}

	if im.sources != nil {
		if err := im.sources.RecordImport(ctx, f.ID, st.Kept); err != nil {
			im.logger.Warn("import not recorded", "feed", f.ID, "error", err)
		}
	}
	im.logger.Info("import done", "feed", f.ID, "file", f.File, "raw", st.Raw, "kept", st.Kept)
	return &Result{Feed: f.ID, URL: url, File: f.File, Stats: st}, nil
}

func validate(kind Kind, data []byte) (content.Stats, error) {
	switch kind {
	case KindProducts:
		_, st, err := content.ParseProducts(data)
		return st, err
	case KindProjects:
		_, st, err := content.ParseProjects(data)
		return st, err
	default:
		return content.Stats{}, fmt.Errorf("unknown feed kind %q", kind)
	}
}

// ImportAll imports every feed that has a URL, through a bounded worker
// pool. Results are in feed order; failures are joined into the error.
func (im *Importer) ImportAll(ctx context.Context) ([]Result, error) {
	pool, err := ants.NewPool(im.workers)
	if err != nil {
		return nil, fmt.Errorf("create import pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]*Result, len(im.feeds))
		errs    []error
	)
	for i, f := range im.feeds {
		url, err := im.URL(f)
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			continue
		}
		if url == "" {
			im.logger.Debug("import skipped, no url", "feed", f.ID)
			continue
		}

		wg.Add(1)
		err = pool.Submit(func() {
			defer wg.Done()
			res, err := im.ImportURL(ctx, f, url)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results[i] = res
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("submit %s: %w", f.ID, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	var out []Result
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, errors.Join(errs...)
}
