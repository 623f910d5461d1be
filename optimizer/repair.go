package optimizer

import (
	"sort"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
)

// repair greedily pulls total calories into [Low, High] × target.
// Below the band it adds unselected items from the lightest up, never
// overshooting the upper bound. Above the band it drops selected items from
// the heaviest down while more than MinItems remain, skipping removals that
// would undershoot the lower bound. The pass is best effort: a catalogue that
// cannot reach the band leaves the selection outside it.
// Returns true if any gene changed.
func repair(c *Chromosome, items []food.Item, target float64, cfg config.RepairConfig) bool {
	low, high := target*cfg.Low, target*cfg.High

	var total float64
	count := 0
	for i, g := range c.genes {
		if g {
			total += items[i].Calories
			count++
		}
	}

	changed := false
	switch {
	case total < low:
		candidates := indicesWhere(c.genes, false)
		sort.SliceStable(candidates, func(a, b int) bool {
			return items[candidates[a]].Calories < items[candidates[b]].Calories
		})
		for _, i := range candidates {
			if total >= low {
				break
			}
			if total+items[i].Calories <= high {
				c.Set(i, true)
				total += items[i].Calories
				changed = true
			}
		}

	case total > high:
		selected := indicesWhere(c.genes, true)
		sort.SliceStable(selected, func(a, b int) bool {
			return items[selected[a]].Calories > items[selected[b]].Calories
		})
		for _, i := range selected {
			if total <= high || count <= cfg.MinItems {
				break
			}
			if total-items[i].Calories < low {
				continue
			}
			c.Set(i, false)
			total -= items[i].Calories
			count--
			changed = true
		}
	}
	return changed
}

func indicesWhere(genes []bool, v bool) []int {
	var out []int
	for i, g := range genes {
		if g == v {
			out = append(out, i)
		}
	}
	return out
}
