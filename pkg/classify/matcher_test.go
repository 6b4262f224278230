package classify

import (
	"fmt"
	"testing"
)

// memStore is an in-memory KeywordStore double.
type memStore struct {
	db    map[string][]string
	saves int
}

func newMemStore(db map[string][]string) *memStore {
	if db == nil {
		db = map[string][]string{}
	}
	return &memStore{db: db}
}

func clone(db map[string][]string) map[string][]string {
	out := make(map[string][]string, len(db))
	for k, v := range db {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func (s *memStore) Load() (map[string][]string, error) { return clone(s.db), nil }

func (s *memStore) Save(db map[string][]string) error {
	s.db = clone(db)
	s.saves++
	return nil
}

func seededStore() *memStore {
	return newMemStore(map[string][]string{
		"Panificatie": {"paine", "covrig"},
		"Lactate":     {"lapte", "unt"},
	})
}

func TestClassifyExactKeyword(t *testing.T) {
	m := NewMatcher(seededStore())
	d, err := m.Classify(Product{Name: "PAINE", Price: 3})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !d.Resolved || d.Category != "Panificatie" || d.Score != 100 {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestClassifyBelowThresholdUnresolved(t *testing.T) {
	m := NewMatcher(seededStore())
	d, err := m.Classify(Product{Name: "XQZW"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if d.Resolved {
		t.Fatalf("expected unresolved decision, got %+v", d)
	}
	if len(d.Candidates) == 0 {
		t.Fatal("unresolved decision must carry candidates")
	}
}

func TestResolveLearnsKeyword(t *testing.T) {
	store := seededStore()
	m := NewMatcher(store)

	d, _ := m.Classify(Product{Name: "CARTOFI"})
	if d.Resolved {
		t.Fatalf("precondition failed: %+v", d)
	}

	cat, err := m.Resolve("CARTOFI", "legume")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cat != "Legume" {
		t.Fatalf("expected title-cased category, got %q", cat)
	}
	if store.saves != 1 {
		t.Fatalf("expected store persisted once, got %d", store.saves)
	}
	found := false
	for _, kw := range store.db["Legume"] {
		if kw == "cartofi" {
			found = true
		}
	}
	if !found {
		t.Fatalf("keyword not learned: %v", store.db)
	}

	d2, _ := m.Classify(Product{Name: "CARTOFI"})
	if !d2.Resolved || d2.Category != "Legume" || d2.Score != 100 {
		t.Fatalf("second pass should hit the learned keyword, got %+v", d2)
	}
}

func TestResolveIdempotentKeyword(t *testing.T) {
	store := seededStore()
	m := NewMatcher(store)
	if _, err := m.Resolve("paine", "Panificatie"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if n := len(store.db["Panificatie"]); n != 2 {
		t.Fatalf("existing keyword duplicated: %v", store.db["Panificatie"])
	}
}

func TestClassifyAllWithResolver(t *testing.T) {
	store := seededStore()
	m := NewMatcher(store)
	m.Resolver = func(product string, categories []string) (string, error) {
		if len(categories) == 0 {
			return "", fmt.Errorf("no categories offered")
		}
		return "Legume", nil
	}
	out, err := m.ClassifyAll([]Product{{Name: "PAINE"}, {Name: "CARTOFI"}})
	if err != nil {
		t.Fatalf("classify all: %v", err)
	}
	if !out[0].Resolved || out[0].Category != "Panificatie" {
		t.Fatalf("first decision %+v", out[0])
	}
	if !out[1].Resolved || out[1].Category != "Legume" {
		t.Fatalf("second decision %+v", out[1])
	}
	if store.saves != 1 {
		t.Fatalf("resolver answer must be persisted, saves=%d", store.saves)
	}
}
