package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// KeywordStore persists the category → keywords mapping the fuzzy matcher
// learns from. The matcher is the only writer; backends just move bytes.
type KeywordStore interface {
	Load() (map[string][]string, error)
	Save(map[string][]string) error
}

// FileStore keeps the keyword mapping in a JSON file. A missing file loads
// the seed taxonomy instead of failing, so a fresh deployment works out of
// the box.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func seedKeywords() map[string][]string {
	return map[string][]string{
		"Bauturi":     {"cola", "apa", "suc", "bere"},
		"Panificatie": {"paine", "franzela", "covrig"},
		"Lactate":     {"lapte", "branza", "unt"},
	}
}

func (s *FileStore) Load() (map[string][]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return seedKeywords(), nil
		}
		return nil, fmt.Errorf("load keyword store: %w", err)
	}
	out := map[string][]string{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode keyword store %s: %w", s.Path, err)
	}
	return out, nil
}

func (s *FileStore) Save(db map[string][]string) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	// write-then-rename so a crash mid-save never truncates the store
	tmp := s.Path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}
