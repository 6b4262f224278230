package classify

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultThreshold is the minimum partial-ratio score (0–100) for an
// automatic category assignment.
const DefaultThreshold = 85

// Product is an extracted receipt line handed to the fuzzy matcher.
type Product struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Candidate is a scored category guess attached to unresolved decisions.
type Candidate struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// Decision is the outcome of classifying one product. Unresolved decisions
// carry ranked candidates so a caller can collect the answer later and feed
// it back through Resolve.
type Decision struct {
	Product
	Category   string      `json:"category,omitempty"`
	Score      int         `json:"score"`
	Resolved   bool        `json:"resolved"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Resolver supplies a category for a product the matcher could not place,
// e.g. an interactive prompt in the batch CLI. Returning an error leaves
// the decision unresolved.
type Resolver func(product string, categories []string) (string, error)

// Matcher assigns spending categories to product names by partial-ratio
// similarity against a learned keyword store. Store writes happen only
// through resolution and are serialized: never speculatively, never
// concurrently.
type Matcher struct {
	Store     KeywordStore
	Threshold int
	Resolver  Resolver

	mu sync.Mutex
}

func NewMatcher(store KeywordStore) *Matcher {
	return &Matcher{Store: store, Threshold: DefaultThreshold}
}

// ClassifyAll classifies products in order. When a product scores below the
// threshold and a Resolver is set, the answer is learned into the store
// before the next product is considered.
func (m *Matcher) ClassifyAll(products []Product) ([]Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, err := m.Store.Load()
	if err != nil {
		return nil, err
	}

	out := make([]Decision, 0, len(products))
	for _, p := range products {
		d := scoreProduct(db, p, m.threshold())
		if !d.Resolved && m.Resolver != nil {
			chosen, err := m.Resolver(p.Name, categoryNames(db))
			if err == nil && chosen != "" {
				cat, err := resolveInto(db, p.Name, chosen)
				if err == nil {
					if err := m.Store.Save(db); err != nil {
						return nil, err
					}
					d.Category = cat
					d.Resolved = true
				}
			}
		}
		out = append(out, d)
	}
	return out, nil
}

// Classify classifies a single product without invoking the resolver.
func (m *Matcher) Classify(p Product) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	db, err := m.Store.Load()
	if err != nil {
		return Decision{}, err
	}
	return scoreProduct(db, p, m.threshold()), nil
}

// Resolve records a caller-chosen category for a product: the category is
// created if new (title-cased), the lowercase product name is appended as a
// keyword if absent, and the store is persisted before returning. This is
// the only write path into the keyword store.
func (m *Matcher) Resolve(productName, category string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	db, err := m.Store.Load()
	if err != nil {
		return "", err
	}
	cat, err := resolveInto(db, productName, category)
	if err != nil {
		return "", err
	}
	if err := m.Store.Save(db); err != nil {
		return "", err
	}
	return cat, nil
}

func resolveInto(db map[string][]string, productName, category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", fmt.Errorf("category name required")
	}
	cat := cases.Title(language.Und).String(strings.ToLower(category))
	if _, ok := db[cat]; !ok {
		db[cat] = []string{}
	}
	keyword := strings.ToLower(strings.TrimSpace(productName))
	for _, k := range db[cat] {
		if k == keyword {
			return cat, nil
		}
	}
	db[cat] = append(db[cat], keyword)
	return cat, nil
}

func (m *Matcher) threshold() int {
	if m.Threshold <= 0 {
		return DefaultThreshold
	}
	return m.Threshold
}

func scoreProduct(db map[string][]string, p Product, threshold int) Decision {
	key := strings.ToLower(p.Name)
	var cands []Candidate
	for _, cat := range categoryNames(db) {
		best := 0
		for _, kw := range db[cat] {
			if s := fuzzy.PartialRatio(key, kw); s > best {
				best = s
			}
		}
		if len(db[cat]) > 0 {
			cands = append(cands, Candidate{Category: cat, Score: best})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Score > cands[j].Score })

	d := Decision{Product: p}
	if len(cands) == 0 {
		return d
	}
	d.Score = cands[0].Score
	if cands[0].Score >= threshold {
		d.Category = cands[0].Category
		d.Resolved = true
		return d
	}
	if len(cands) > 3 {
		cands = cands[:3]
	}
	d.Candidates = cands
	return d
}

func categoryNames(db map[string][]string) []string {
	names := make([]string, 0, len(db))
	for name := range db {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
