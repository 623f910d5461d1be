package optimizer

import (
	"math"
	"math/bits"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
	"github.com/pthm-cable/dietsim/nutrition"
)

// evaluator computes chromosome fitness for one target. It holds no random
// state, so chromosomes can be evaluated concurrently.
type evaluator struct {
	table   *nutrition.Table
	scores  []float64
	catBits []food.Category
	target  float64
	cfg     config.FitnessConfig
}

func newEvaluator(table *nutrition.Table, target float64, cfg config.FitnessConfig) *evaluator {
	ev := &evaluator{
		table:   table,
		scores:  table.Scores(target),
		catBits: make([]food.Category, table.Len()),
		target:  target,
		cfg:     cfg,
	}
	for i := range ev.catBits {
		ev.catBits[i] = table.Category(i)
	}
	return ev
}

// FitnessBreakdown holds the terms that make up a fitness value.
type FitnessBreakdown struct {
	Count     int
	Calories  float64
	Score     float64 // sum of nutritional scores
	Variety   float64
	Balance   float64
	Deviation float64 // subtracted
	Total     float64
}

func (ev *evaluator) fitness(genes []bool) float64 {
	return ev.breakdown(genes).Total
}

func (ev *evaluator) breakdown(genes []bool) FitnessBreakdown {
	var b FitnessBreakdown
	var perCategory [8]int

	for i, included := range genes {
		if !included {
			continue
		}
		b.Count++
		b.Score += ev.scores[i]
		b.Calories += ev.table.Item(i).Calories
		for cat := ev.catBits[i]; cat != 0; cat &= cat - 1 {
			perCategory[bits.TrailingZeros8(uint8(cat))]++
		}
	}

	if b.Count == 0 {
		b.Total = ev.cfg.EmptyPenalty
		return b
	}

	b.Variety = ev.varietyBonus(b.Count)
	b.Balance = ev.balanceBonus(perCategory)
	b.Deviation = ev.deviationPenalty(b.Calories)
	b.Total = b.Score + b.Variety + b.Balance - b.Deviation
	return b
}

// varietyBonus gives the full bonus inside [VarietyMin, VarietyMax] and
// loses VarietyDecay per item outside it.
func (ev *evaluator) varietyBonus(count int) float64 {
	c := ev.cfg
	var dist int
	switch {
	case count < c.VarietyMin:
		dist = c.VarietyMin - count
	case count > c.VarietyMax:
		dist = count - c.VarietyMax
	}
	return math.Max(0, c.VarietyBonus-c.VarietyDecay*float64(dist))
}

func (ev *evaluator) balanceBonus(perCategory [8]int) float64 {
	c := ev.cfg
	var bonus float64
	has := func(cat food.Category) bool {
		return perCategory[bits.TrailingZeros8(uint8(cat))] > 0
	}
	if has(food.Protein) {
		bonus += c.ProteinBonus
	}
	if has(food.Carbohydrate) {
		bonus += c.CarbohydrateBonus
	}
	if has(food.Vegetable) {
		bonus += c.VegetableBonus
	}
	if has(food.Fruit) {
		bonus += c.FruitBonus
	}

	largest := 0
	for _, n := range perCategory {
		if n > largest {
			largest = n
		}
	}
	if over := largest - c.OverrepLimit; over > 0 {
		bonus -= c.OverrepPenalty * float64(over)
	}
	return bonus
}

func (ev *evaluator) deviationPenalty(calories float64) float64 {
	c := ev.cfg
	dev := math.Abs(calories - ev.target)
	tolerance := c.DeviationTolerance * ev.target
	if dev <= tolerance {
		return 0
	}
	return (dev - tolerance) / c.DeviationScale
}
