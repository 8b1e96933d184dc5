package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hazyhaar/showroom/pkg/site"
)

const goodProducts = `[
	{"name": "Edge 5", "image": "/img/edge-5.jpg", "category": "Invisible"},
	{"name": "Edge 3", "finishes": [{"name": "White", "image": "/img/edge-3.jpg"}]},
	{"name": "", "image": "/img/nameless.jpg"}
]`

const goodProjects = `[
	{"section": "Clubs", "projects": [{"title": "Club Silencio", "location": "Paris"}]}
]`

const oldFile = `[{"name": "Old", "image": "/img/old.jpg"}]`

// feedServer serves fixed bodies by path and counts requests.
func feedServer(t *testing.T, bodies map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, &hits
}

// contentDir writes a manifest whose feeds point at baseURL, plus an existing
// product file for every brand.
func contentDir(t *testing.T, baseURL string) *site.Manifest {
	t.Helper()
	dir := t.TempDir()
	manifest := fmt.Sprintf(`name: test
brands:
  - id: amina
    feed_url: %[1]s/amina.json
  - id: coda
    feed_url: %[1]s/coda.json
  - id: brionvega
projects:
  feed_url: %[1]s/projects.json
`, baseURL)
	if err := os.WriteFile(filepath.Join(dir, site.ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "brands"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"amina", "coda", "brionvega"} {
		if err := os.WriteFile(filepath.Join(dir, "brands", id+".json"), []byte(oldFile), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	m, err := site.LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	return m
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

// assertNoTempFiles fails if a download temp file was left next to the
// brand files.
func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".download-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFeeds(t *testing.T) {
	m := contentDir(t, "https://feeds.example.com")
	feeds := Feeds(m)

	if len(feeds) != 4 {
		t.Fatalf("expected 4 feeds, got %d", len(feeds))
	}
	if feeds[0].ID != "amina" || feeds[0].Kind != KindProducts || feeds[0].File != filepath.Join("brands", "amina.json") {
		t.Errorf("unexpected first feed %+v", feeds[0])
	}
	if feeds[2].DefaultURL != "" {
		t.Errorf("brionvega has no feed url, got %q", feeds[2].DefaultURL)
	}
	last := feeds[3]
	if last.ID != ProjectsFeedID || last.Kind != KindProjects || last.File != "projects.json" {
		t.Errorf("unexpected projects feed %+v", last)
	}

	if _, err := FindFeed(feeds, "bose"); err == nil {
		t.Error("expected error for unknown feed")
	}
}

func TestImport(t *testing.T) {
	ts, _ := feedServer(t, map[string]string{"/amina.json": goodProducts})
	m := contentDir(t, ts.URL)
	sdb := tempSourceDB(t)

	im, err := New(m, sdb)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := im.Import(context.Background(), "amina")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Stats.Raw != 3 || res.Stats.Kept != 2 {
		t.Errorf("stats = %+v, want 3 raw 2 kept", res.Stats)
	}

	target := m.Path(filepath.Join("brands", "amina.json"))
	if got := readFile(t, target); got != goodProducts {
		t.Errorf("content file not replaced: %s", got)
	}
	assertNoTempFiles(t, filepath.Dir(target))

	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	for _, src := range sources {
		if src.FeedID == "amina" && (src.LastKept == nil || *src.LastKept != 2) {
			t.Errorf("last_kept = %v, want 2", src.LastKept)
		}
	}
}

func TestImport_Projects(t *testing.T) {
	ts, _ := feedServer(t, map[string]string{"/projects.json": goodProjects})
	m := contentDir(t, ts.URL)

	im, err := New(m, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := im.Import(context.Background(), ProjectsFeedID)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Stats.Kept != 1 {
		t.Errorf("kept = %d, want 1", res.Stats.Kept)
	}
	if got := readFile(t, m.Path("projects.json")); got != goodProjects {
		t.Errorf("projects file = %s", got)
	}
}

func TestImport_RefusesEmptyFeed(t *testing.T) {
	ts, _ := feedServer(t, map[string]string{
		"/amina.json": `[{"name": "No image"}]`,
		"/coda.json":  `{"unexpected": true}`,
	})
	m := contentDir(t, ts.URL)
	im, err := New(m, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, id := range []string{"amina", "coda"} {
		_, err := im.Import(context.Background(), id)
		if !errors.Is(err, ErrEmptyFeed) {
			t.Errorf("%s: err = %v, want ErrEmptyFeed", id, err)
		}
		if got := readFile(t, m.Path(filepath.Join("brands", id+".json"))); got != oldFile {
			t.Errorf("%s: content file changed: %s", id, got)
		}
	}
	assertNoTempFiles(t, m.Path("brands"))
}

func TestImport_InvalidJSON(t *testing.T) {
	ts, _ := feedServer(t, map[string]string{"/amina.json": `[{"name": `})
	m := contentDir(t, ts.URL)
	im, _ := New(m, nil)

	if _, err := im.Import(context.Background(), "amina"); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if got := readFile(t, m.Path(filepath.Join("brands", "amina.json"))); got != oldFile {
		t.Errorf("content file changed: %s", got)
	}
}

func TestImport_TrailingGarbage(t *testing.T) {
	ts, _ := feedServer(t, map[string]string{"/amina.json": goodProducts + ` {"broken`})
	m := contentDir(t, ts.URL)
	im, _ := New(m, nil)

	if _, err := im.Import(context.Background(), "amina"); err == nil {
		t.Fatal("expected error for concatenated feed")
	}
	if got := readFile(t, m.Path(filepath.Join("brands", "amina.json"))); got != oldFile {
		t.Errorf("content file changed: %s", got)
	}
	assertNoTempFiles(t, m.Path("brands"))
}

func TestImport_NoURL(t *testing.T) {
	m := contentDir(t, "https://feeds.example.com")
	im, _ := New(m, nil)

	_, err := im.Import(context.Background(), "brionvega")
	if !errors.Is(err, ErrNoURL) {
		t.Fatalf("err = %v, want ErrNoURL", err)
	}
	if _, err := im.Import(context.Background(), "bose"); err == nil {
		t.Fatal("expected error for unknown feed")
	}
}

func TestImport_SourceOverride(t *testing.T) {
	ts, _ := feedServer(t, map[string]string{"/mirror/amina.json": goodProducts})
	m := contentDir(t, ts.URL)
	sdb := tempSourceDB(t)

	im, err := New(m, sdb)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := sdb.SetURL("amina", ts.URL+"/mirror/amina.json"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}

	res, err := im.Import(context.Background(), "amina")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !strings.HasSuffix(res.URL, "/mirror/amina.json") {
		t.Errorf("url = %s, want the override", res.URL)
	}
}

func TestImportAll(t *testing.T) {
	fastBackoff(t)
	ts, hits := feedServer(t, map[string]string{
		"/amina.json":    goodProducts,
		"/projects.json": goodProjects,
	})
	m := contentDir(t, ts.URL)

	im, err := New(m, nil, WithWorkers(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := im.ImportAll(context.Background())

	// coda.json is missing upstream; brionvega has no URL and is skipped.
	if err == nil || !strings.Contains(err.Error(), "coda") {
		t.Errorf("err = %v, want coda failure", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Feed != "amina" || results[1].Feed != ProjectsFeedID {
		t.Errorf("results out of feed order: %s, %s", results[0].Feed, results[1].Feed)
	}
	// amina and projects once each, coda three attempts.
	if got := hits.Load(); got != 5 {
		t.Errorf("requests = %d, want 5", got)
	}
	if got := readFile(t, m.Path(filepath.Join("brands", "coda.json"))); got != oldFile {
		t.Errorf("coda file changed: %s", got)
	}
}
