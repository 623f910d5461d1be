// Package nutrition scores foods against a daily caloric target.
package nutrition

import (
	"math"

	"github.com/pthm-cable/dietsim/food"
)

// Category multipliers applied to the base score.
const (
	ProteinBonus      = 1.4
	CarbohydrateBonus = 1.3
	LegumeBonus       = 1.35
	VegetableBonus    = 1.25
	FruitBonus        = 1.2
	FatBonus          = 1.15
)

// Portion-fit constants.
const (
	MealsPerDay      = 3.0
	PortionTolerance = 100.0 // kcal around the ideal portion that earns the fit bonus
	PortionFitBonus  = 1.2
	OversizeRatio    = 1.5 // portions above this multiple of the ideal are penalised
	OversizePenalty  = 0.8
)

// CategoryMultiplier returns the product of the bonuses of every category in c.
func CategoryMultiplier(c food.Category) float64 {
	m := 1.0
	if c.Has(food.Protein) {
		m *= ProteinBonus
	}
	if c.Has(food.Carbohydrate) {
		m *= CarbohydrateBonus
	}
	if c.Has(food.Legume) {
		m *= LegumeBonus
	}
	if c.Has(food.Vegetable) {
		m *= VegetableBonus
	}
	if c.Has(food.Fruit) {
		m *= FruitBonus
	}
	if c.Has(food.Fat) {
		m *= FatBonus
	}
	return m
}

// PortionMultiplier rewards portions close to one meal's share of target.
func PortionMultiplier(calories, target float64) float64 {
	ideal := target / MealsPerDay
	switch {
	case math.Abs(calories-ideal) <= PortionTolerance:
		return PortionFitBonus
	case calories > ideal*OversizeRatio:
		return OversizePenalty
	}
	return 1.0
}

// Score returns the quality score of item for the given daily target.
func Score(item food.Item, target float64) float64 {
	return scoreWith(food.Classify(item.Name), item.Calories, target)
}

func scoreWith(cat food.Category, calories, target float64) float64 {
	return 1.0 * CategoryMultiplier(cat) * PortionMultiplier(calories, target)
}

// Table caches the categories of a fixed item list so repeated scoring does
// not re-classify names.
type Table struct {
	items      []food.Item
	categories []food.Category
}

// NewTable classifies every item once.
func NewTable(items []food.Item) *Table {
	t := &Table{
		items:      items,
		categories: make([]food.Category, len(items)),
	}
	for i, it := range items {
		t.categories[i] = food.Classify(it.Name)
	}
	return t
}

// Len returns the number of items in the table.
func (t *Table) Len() int {
	return len(t.items)
}

// Item returns the i-th item.
func (t *Table) Item(i int) food.Item {
	return t.items[i]
}

// Category returns the cached category set of the i-th item.
func (t *Table) Category(i int) food.Category {
	return t.categories[i]
}

// Scores returns the score of every item at target, in table order.
func (t *Table) Scores(target float64) []float64 {
	out := make([]float64, len(t.items))
	for i, it := range t.items {
		out[i] = scoreWith(t.categories[i], it.Calories, target)
	}
	return out
}
