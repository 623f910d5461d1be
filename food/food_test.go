package food

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewCatalogue(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		wantErr error
	}{
		{"valid", []Item{{"Egg", 155}, {"Rice", 130}}, nil},
		{"empty name", []Item{{"  ", 10}}, ErrEmptyName},
		{"zero calories", []Item{{"Water", 0}}, ErrInvalidCalories},
		{"negative calories", []Item{{"Ghost", -5}}, ErrInvalidCalories},
		{"duplicate", []Item{{"Egg", 155}, {"Egg", 150}}, ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalogue(tt.items)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalogueOrderAndLookup(t *testing.T) {
	c := DefaultCatalogue()
	if c.Len() != 24 {
		t.Fatalf("default catalogue has %d items, want 24", c.Len())
	}
	if got := c.At(0).Name; got != "Grilled Chicken" {
		t.Errorf("first item = %q, want Grilled Chicken", got)
	}
	it, ok := c.Lookup("Olive Oil")
	if !ok || it.Calories != 884 {
		t.Errorf("Lookup(Olive Oil) = %v, %v", it, ok)
	}
	if _, ok := c.Lookup("Pizza"); ok {
		t.Error("Lookup(Pizza) should fail")
	}

	// Items returns a copy
	items := c.Items()
	items[0].Calories = 1
	if c.At(0).Calories == 1 {
		t.Error("Items() must not expose internal storage")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	input := "name,calories\nEgg,155\nBrown Rice,130\n"
	c, err := LoadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	want := []Item{{"Egg", 155}, {"Brown Rice", 130}}
	if diff := cmp.Diff(want, c.Items()); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := c.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	again, err := LoadCSV(&buf)
	if err != nil {
		t.Fatalf("LoadCSV after write: %v", err)
	}
	if diff := cmp.Diff(c.Items(), again.Items()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCSVRejectsBadRows(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("name,calories\nEgg,-1\n"))
	if !errors.Is(err, ErrInvalidCalories) {
		t.Fatalf("error = %v, want ErrInvalidCalories", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"Grilled Chicken", Protein},
		{"Frango Grelhado", Protein},
		{"Feijão Preto", Legume},
		{"FEIJAO", Legume},
		{"Brócolis", Vegetable},
		{"Maçã", Fruit},
		{"Macarrão", Fruit}, // "maca" is a fragment of the folded name
		{"Pãozinho", Carbohydrate},
		{"Walnuts", Fat},
		{"Batata-doce", Carbohydrate},
		{"Pão Integral", Carbohydrate},
		{"Oats", Carbohydrate},
		{"Brazil Nuts", Fat},
		{"Yogurt", Uncategorized},
		{"Chicken and Rice", Protein | Carbohydrate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %b, want %b", tt.name, got, tt.want)
			}
		})
	}
}

func TestCategoryString(t *testing.T) {
	if got := (Protein | Fruit).String(); got != "protein" {
		t.Errorf("String() = %q, want protein", got)
	}
	if got := Uncategorized.String(); got != "other" {
		t.Errorf("String() = %q, want other", got)
	}
}

func TestGroupByCategory(t *testing.T) {
	items := []Item{{"Egg", 155}, {"Apple", 52}, {"Yogurt", 59}, {"Fish", 206}}
	groups := GroupByCategory(items)

	want := map[Category][]Item{
		Protein:       {{"Egg", 155}, {"Fish", 206}},
		Fruit:         {{"Apple", 52}},
		Uncategorized: {{"Yogurt", 59}},
	}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultCatalogueCategoriesCovered(t *testing.T) {
	seen := Uncategorized
	for _, it := range DefaultItems() {
		seen |= Classify(it.Name)
	}
	for _, c := range AllCategories {
		if !seen.Has(c) {
			t.Errorf("default catalogue has no %s item", c)
		}
	}
}
