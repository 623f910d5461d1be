// Package food defines food items, the ordered catalogue the optimizer
// searches over, and keyword-based nutritional categories.
package food

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gocarina/gocsv"
)

// Errors returned while building a catalogue.
var (
	ErrDuplicateName   = errors.New("duplicate food name")
	ErrInvalidCalories = errors.New("calories must be a positive number")
	ErrEmptyName       = errors.New("food name is empty")
)

// Item is a named food with the calories of one reference portion.
type Item struct {
	Name     string  `csv:"name" yaml:"name" json:"name"`
	Calories float64 `csv:"calories" yaml:"calories" json:"calories"`
}

// Catalogue is an ordered, immutable collection of uniquely named items.
type Catalogue struct {
	items []Item
	index map[string]int
}

// NewCatalogue validates items and builds a catalogue preserving their order.
func NewCatalogue(items []Item) (*Catalogue, error) {
	c := &Catalogue{
		items: make([]Item, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for i, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, fmt.Errorf("item %d: %w", i, ErrEmptyName)
		}
		if it.Calories <= 0 || math.IsNaN(it.Calories) || math.IsInf(it.Calories, 0) {
			return nil, fmt.Errorf("item %q: %w (got %v)", name, ErrInvalidCalories, it.Calories)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("item %q: %w", name, ErrDuplicateName)
		}
		c.index[name] = len(c.items)
		c.items = append(c.items, Item{Name: name, Calories: it.Calories})
	}
	return c, nil
}

// MustCatalogue is like NewCatalogue but panics on error.
func MustCatalogue(items []Item) *Catalogue {
	c, err := NewCatalogue(items)
	if err != nil {
		panic(fmt.Sprintf("food: %v", err))
	}
	return c
}

// LoadCSV reads a catalogue from CSV with "name" and "calories" columns.
func LoadCSV(r io.Reader) (*Catalogue, error) {
	var items []Item
	if err := gocsv.Unmarshal(r, &items); err != nil {
		return nil, fmt.Errorf("parsing catalogue csv: %w", err)
	}
	return NewCatalogue(items)
}

// WriteCSV writes the catalogue as CSV with a header row.
func (c *Catalogue) WriteCSV(w io.Writer) error {
	if err := gocsv.Marshal(c.items, w); err != nil {
		return fmt.Errorf("writing catalogue csv: %w", err)
	}
	return nil
}

// Len returns the number of items.
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns a copy of the items in catalogue order.
func (c *Catalogue) Items() []Item {
	if c == nil {
		return nil
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// At returns the i-th item.
func (c *Catalogue) At(i int) Item {
	return c.items[i]
}

// Lookup returns the item with the given name.
func (c *Catalogue) Lookup(name string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// TotalCalories sums the calories of items.
func TotalCalories(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += it.Calories
	}
	return total
}

// Names returns the item names in order.
func Names(items []Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}
