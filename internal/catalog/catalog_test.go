package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukerupert/grocer/internal/model"
)

const produceYAML = `
categories:
  - name: Produce
    items:
      - { id: 1, name: Apple, emoji: "🍎" }
      - { id: 0, name: Pear, emoji: "🍐" }
  - name: Dairy
    items:
      - { id: 7, name: Milk, emoji: "🥛" }
`

func TestLoadPreservesOrder(t *testing.T) {
	s, err := Load(strings.NewReader(produceYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cats := s.ListCategories()
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cats))
	}
	if cats[0].Name != "Produce" || cats[1].Name != "Dairy" {
		t.Errorf("category order = [%q %q], want [Produce Dairy]", cats[0].Name, cats[1].Name)
	}
	if len(cats[0].Items) != 2 {
		t.Fatalf("expected 2 produce items, got %d", len(cats[0].Items))
	}
	if cats[0].Items[0].Name != "Apple" || cats[0].Items[1].Name != "Pear" {
		t.Errorf("item order = [%q %q], want [Apple Pear]", cats[0].Items[0].Name, cats[0].Items[1].Name)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestFindItem(t *testing.T) {
	s, err := Load(strings.NewReader(produceYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		id       uint64
		wantOK   bool
		wantName string
		wantCat  string
	}{
		{1, true, "Apple", "Produce"},
		{0, true, "Pear", "Produce"},
		{7, true, "Milk", "Dairy"},
		{2, false, "", ""},
		{9999, false, "", ""},
	}
	for _, tt := range tests {
		item, ok := s.FindItem(tt.id)
		if ok != tt.wantOK {
			t.Errorf("FindItem(%d) ok = %v, want %v", tt.id, ok, tt.wantOK)
			continue
		}
		if item.Name != tt.wantName {
			t.Errorf("FindItem(%d).Name = %q, want %q", tt.id, item.Name, tt.wantName)
		}
		cat, _ := s.CategoryOf(tt.id)
		if cat != tt.wantCat {
			t.Errorf("CategoryOf(%d) = %q, want %q", tt.id, cat, tt.wantCat)
		}
	}
}

func TestListCategoriesReturnsCopy(t *testing.T) {
	s, err := Load(strings.NewReader(produceYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cats := s.ListCategories()
	cats[0].Name = "Mutated"
	cats[0].Items[0].Name = "Mutated"

	again := s.ListCategories()
	if again[0].Name != "Produce" {
		t.Errorf("category name changed to %q", again[0].Name)
	}
	if again[0].Items[0].Name != "Apple" {
		t.Errorf("item name changed to %q", again[0].Items[0].Name)
	}
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	tests := []struct {
		name       string
		categories []model.Category
		wantErr    string
	}{
		{
			name:       "empty category name",
			categories: []model.Category{{Name: "  "}},
			wantErr:    "name is required",
		},
		{
			name:       "duplicate category",
			categories: []model.Category{{Name: "Produce"}, {Name: "Produce"}},
			wantErr:    "duplicate name",
		},
		{
			name: "duplicate id across categories",
			categories: []model.Category{
				{Name: "Produce", Items: []model.CategoryItem{{ID: 1, Name: "Apple"}}},
				{Name: "Dairy", Items: []model.CategoryItem{{ID: 1, Name: "Milk"}}},
			},
			wantErr: "duplicate",
		},
		{
			name: "duplicate id within category",
			categories: []model.Category{
				{Name: "Produce", Items: []model.CategoryItem{{ID: 3, Name: "Apple"}, {ID: 3, Name: "Pear"}}},
			},
			wantErr: "duplicate",
		},
		{
			name: "empty item name",
			categories: []model.Category{
				{Name: "Produce", Items: []model.CategoryItem{{ID: 1}}},
			},
			wantErr: "name is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.categories)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	for _, doc := range []string{"", "categories: [", "shelves: []"} {
		if _, err := Load(strings.NewReader(doc)); err == nil {
			t.Errorf("Load(%q) expected error", doc)
		}
	}
}

func TestLoadRejectsNegativeID(t *testing.T) {
	doc := `
categories:
  - name: Produce
    items:
      - { id: -1, name: Apple, emoji: "🍎" }
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Error("expected error for negative id")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(produceYAML), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if _, ok := s.FindItem(7); !ok {
		t.Error("expected item 7 to be found")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaultCatalog(t *testing.T) {
	s := Default()

	cats := s.ListCategories()
	expected := []string{"Produce", "Dairy", "Meat & Seafood", "Bakery", "Pantry", "Frozen", "Beverages", "Snacks", "Household", "Personal Care"}
	if len(cats) != len(expected) {
		t.Fatalf("expected %d categories, got %d", len(expected), len(cats))
	}
	for i, name := range expected {
		if cats[i].Name != name {
			t.Errorf("category[%d].Name = %q, want %q", i, cats[i].Name, name)
		}
	}

	apple, ok := s.FindItem(1)
	if !ok {
		t.Fatal("expected item 1 in default catalog")
	}
	if apple.Name != "Apple" || apple.Emoji != "🍎" {
		t.Errorf("item 1 = %+v, want Apple 🍎", apple)
	}
}

func TestSearch(t *testing.T) {
	s, err := New([]model.Category{
		{Name: "Produce", Items: []model.CategoryItem{
			{ID: 1, Name: "Pineapple", Emoji: "🍍"},
			{ID: 2, Name: "Apple", Emoji: "🍎"},
		}},
		{Name: "Bakery", Items: []model.CategoryItem{
			{ID: 3, Name: "Apple Pie", Emoji: "🥧"},
			{ID: 4, Name: "Bread", Emoji: "🍞"},
		}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		query string
		want  []uint64
	}{
		{"apple", []uint64{2, 1, 3}},
		{"  APPLE ", []uint64{2, 1, 3}},
		{"bread", []uint64{4}},
		{"pie", []uint64{3}},
		{"kiwi", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := s.Search(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %v, want ids %v", tt.query, got, tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Search(%q)[%d].ID = %d, want %d", tt.query, i, got[i].ID, id)
				}
			}
		})
	}
}
