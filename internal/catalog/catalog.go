package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/grocer/internal/model"
)

//go:embed default.yaml
var defaultCatalog []byte

type location struct {
	category int
	item     int
}

// Store holds the category/item hierarchy. It is built once and never
// mutated, so it is safe for concurrent use without locking.
type Store struct {
	categories []model.Category
	index      map[uint64]location
}

type document struct {
	Categories []model.Category `yaml:"categories"`
}

// New builds a Store from categories, validating names and id uniqueness.
// The input slices are copied.
func New(categories []model.Category) (*Store, error) {
	s := &Store{
		categories: make([]model.Category, 0, len(categories)),
		index:      make(map[uint64]location),
	}
	seen := make(map[string]bool, len(categories))
	names := make([]string, 0, len(categories))

	for ci, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("category %d: name is required", ci)
		}
		if seen[name] {
			return nil, fmt.Errorf("category %q: duplicate name", name)
		}
		seen[name] = true
		names = append(names, name)

		items := make([]model.CategoryItem, len(c.Items))
		for ii, item := range c.Items {
			if strings.TrimSpace(item.Name) == "" {
				return nil, fmt.Errorf("category %q item %d: name is required", name, ii)
			}
			if prev, ok := s.index[item.ID]; ok {
				return nil, fmt.Errorf("item id %d: duplicate (already in %q)", item.ID, names[prev.category])
			}
			items[ii] = item
			s.index[item.ID] = location{category: ci, item: ii}
		}
		s.categories = append(s.categories, model.Category{Name: name, Items: items})
	}
	return s, nil
}

// Load parses a YAML catalog document.
func Load(r io.Reader) (*Store, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode catalog: empty document")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Categories)
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return s, nil
}

// Default returns the built-in grocery catalog.
func Default() *Store {
	s, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return s
}

// ListCategories returns every category in load order, each with its items
// in load order. The result is a copy.
func (s *Store) ListCategories() []model.Category {
	out := make([]model.Category, len(s.categories))
	for i, c := range s.categories {
		items := make([]model.CategoryItem, len(c.Items))
		copy(items, c.Items)
		out[i] = model.Category{Name: c.Name, Items: items}
	}
	return out
}

// FindItem looks up a catalog item by id.
func (s *Store) FindItem(id uint64) (model.CategoryItem, bool) {
	loc, ok := s.index[id]
	if !ok {
		return model.CategoryItem{}, false
	}
	return s.categories[loc.category].Items[loc.item], true
}

// CategoryOf returns the name of the category that owns id.
func (s *Store) CategoryOf(id uint64) (string, bool) {
	loc, ok := s.index[id]
	if !ok {
		return "", false
	}
	return s.categories[loc.category].Name, true
}

// Len returns the number of items across all categories.
func (s *Store) Len() int {
	return len(s.index)
}

// Search returns items whose name matches query, case-insensitively. Exact
// name matches come first, then substring matches, each in catalog order.
// An empty query matches nothing.
func (s *Store) Search(query string) []model.CategoryItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var exact, partial []model.CategoryItem
	for _, c := range s.categories {
		for _, item := range c.Items {
			name := strings.ToLower(item.Name)
			switch {
			case name == q:
				exact = append(exact, item)
			case strings.Contains(name, q):
				partial = append(partial, item)
			}
		}
	}
	return append(exact, partial...)
}
