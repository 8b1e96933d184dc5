package media

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	root := t.TempDir()
	lutetia := filepath.Join(root, "hotel-lutetia")
	os.MkdirAll(filepath.Join(lutetia, "raw"), 0o755)
	for _, name := range []string{"02-bar.webp", "01-lobby.JPG", "notes.txt", ".DS_Store"} {
		os.WriteFile(filepath.Join(lutetia, name), []byte("x"), 0o644)
	}
	os.MkdirAll(filepath.Join(root, "empty-project"), 0o755)
	os.WriteFile(filepath.Join(root, "stray.jpg"), []byte("x"), 0o644)

	ix, err := Build(root, "/media/projects")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"/media/projects/hotel-lutetia/01-lobby.JPG", "/media/projects/hotel-lutetia/02-bar.webp"}
	if got := ix.Lookup("hotel-lutetia"); !reflect.DeepEqual(got, want) {
		t.Errorf("Lookup = %v, want %v", got, want)
	}
	if got := ix.Lookup("empty-project"); got != nil {
		t.Errorf("Lookup(empty) = %v, want nil", got)
	}
	if ix.Len() != 1 {
		t.Errorf("Len = %d, want 1", ix.Len())
	}
}

func TestBuild_MissingRoot(t *testing.T) {
	ix, err := Build(filepath.Join(t.TempDir(), "nope"), "/m")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("Len = %d, want 0", ix.Len())
	}
}

func TestLookup_NilIndex(t *testing.T) {
	var ix *Index
	if got := ix.Lookup("x"); got != nil {
		t.Errorf("Lookup = %v, want nil", got)
	}
}

func TestLookup_ReturnsCopy(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "villa"), 0o755)
	os.WriteFile(filepath.Join(root, "villa", "a.png"), []byte("x"), 0o644)

	ix, _ := Build(root, "/m")
	got := ix.Lookup("villa")
	got[0] = "mutated"
	if ix.Lookup("villa")[0] != "/m/villa/a.png" {
		t.Error("Lookup should not expose internal state")
	}
}
