package food

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is a bit set of nutritional categories. A food name may match
// more than one category.
type Category uint8

const (
	Protein Category = 1 << iota
	Carbohydrate
	Legume
	Vegetable
	Fruit
	Fat

	// Uncategorized is the zero set.
	Uncategorized Category = 0
)

// AllCategories lists single categories in reporting order.
var AllCategories = []Category{Protein, Carbohydrate, Legume, Vegetable, Fruit, Fat}

// String returns the category name, or "other" for the empty set.
// Sets with several bits report the first one in AllCategories order.
func (c Category) String() string {
	switch c.Primary() {
	case Protein:
		return "protein"
	case Carbohydrate:
		return "carbohydrate"
	case Legume:
		return "legume"
	case Vegetable:
		return "vegetable"
	case Fruit:
		return "fruit"
	case Fat:
		return "fat"
	}
	return "other"
}

// Has reports whether every bit of o is set in c.
func (c Category) Has(o Category) bool {
	return o != 0 && c&o == o
}

// Primary returns the first single category contained in c.
func (c Category) Primary() Category {
	for _, cat := range AllCategories {
		if c.Has(cat) {
			return cat
		}
	}
	return Uncategorized
}

// keywords maps each category to folded (lower case, accent free) fragments.
// Portuguese and English spellings are both recognised.
var keywords = map[Category][]string{
	Protein:      {"frango", "ovo", "peixe", "carne", "leite", "queijo", "chicken", "egg", "fish", "beef", "meat", "milk", "cheese", "tuna", "salmon", "turkey"},
	Carbohydrate: {"arroz", "batata", "quinoa", "aveia", "pao", "rice", "potato", "oat", "oatmeal", "bread", "pasta"},
	Legume:       {"feijao", "lentilha", "grao", "bean", "lentil", "chickpea"},
	Vegetable:    {"brocolis", "espinafre", "cenoura", "broccoli", "spinach", "carrot"},
	Fruit:        {"banana", "maca", "laranja", "abacate", "apple", "orange", "avocado"},
	Fat:          {"azeite", "castanha", "amendoim", "olive", "nut", "peanut", "almond"},
}

// Fold lower-cases s and strips combining marks so "Feijão" and "feijao"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// Classify returns the categories with a keyword contained anywhere in the
// folded name, so compound names such as "Pãozinho" or "Walnuts" match.
func Classify(name string) Category {
	folded := Fold(name)

	var cat Category
	for _, c := range AllCategories {
		if containsAny(folded, keywords[c]) {
			cat |= c
		}
	}
	return cat
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// GroupByCategory groups items by their primary category, preserving item
// order within each group. Uncategorized items are grouped under
// Uncategorized. Empty groups are omitted.
func GroupByCategory(items []Item) map[Category][]Item {
	groups := make(map[Category][]Item)
	for _, it := range items {
		p := Classify(it.Name).Primary()
		groups[p] = append(groups[p], it)
	}
	return groups
}
