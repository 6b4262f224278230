package classify

import (
	"path/filepath"
	"testing"
)

func TestFileStoreSeedsWhenMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "keywords.json"))
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db["Bauturi"]) == 0 || len(db["Panificatie"]) == 0 || len(db["Lactate"]) == 0 {
		t.Fatalf("missing file should load the seed taxonomy, got %v", db)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.json")
	s := NewFileStore(path)
	want := map[string][]string{"Legume": {"cartofi", "rosii"}}
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || len(got["Legume"]) != 2 || got["Legume"][0] != "cartofi" {
		t.Fatalf("round trip mismatch: %v", got)
	}
}
