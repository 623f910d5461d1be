package optimizer

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
)

// EliteEntry is a selection remembered across optimizer calls.
type EliteEntry struct {
	Items         []food.Item
	TotalCalories float64
	Score         float64
}

func (e EliteEntry) clone() EliteEntry {
	e.Items = append([]food.Item(nil), e.Items...)
	return e
}

// EliteCache keeps the best selection seen during one simulation run and a
// momentum counter of consecutive weeks in which a new candidate lost to it.
// Call Reset before starting an independent run.
type EliteCache struct {
	best     *EliteEntry
	momentum int
}

// NewEliteCache returns an empty cache.
func NewEliteCache() *EliteCache {
	return &EliteCache{}
}

// Best returns a copy of the cached selection.
func (c *EliteCache) Best() (EliteEntry, bool) {
	if c.best == nil {
		return EliteEntry{}, false
	}
	return c.best.clone(), true
}

// Momentum returns the current momentum counter.
func (c *EliteCache) Momentum() int {
	return c.momentum
}

// Empty reports whether nothing has been cached yet.
func (c *EliteCache) Empty() bool {
	return c.best == nil
}

// Store replaces the cached selection and resets momentum.
func (c *EliteCache) Store(e EliteEntry) {
	cp := e.clone()
	c.best = &cp
	c.momentum = 0
}

// Restore replaces the cache contents, as when resuming from a snapshot.
func (c *EliteCache) Restore(e EliteEntry, momentum int) {
	c.Store(e)
	c.momentum = max(0, momentum)
}

// Reset clears the cache.
func (c *EliteCache) Reset() {
	c.best = nil
	c.momentum = 0
}

// AcceptProbability returns the chance of reusing the cached selection over
// a clearly worse candidate at the current momentum.
func (c *EliteCache) AcceptProbability(cfg config.EliteConfig) float64 {
	return math.Min(cfg.AcceptCap, cfg.AcceptBase+float64(c.momentum)*cfg.AcceptStep)
}

// replaceThreshold is ReplaceRatio × best for positive scores. For negative
// scores the margin is taken below best so a better candidate never counts
// as worse.
func replaceThreshold(best, ratio float64) float64 {
	return best - (1-ratio)*math.Abs(best)
}

// Consider applies the cross-call elitism policy to a fresh candidate and
// returns the selection to use. reused is true when the cached selection won.
//
//   - empty cache: candidate is stored.
//   - candidate >= threshold: candidate replaces the cache, momentum = 0.
//   - otherwise, with probability AcceptProbability the cached selection is
//     reused and momentum grows; else the candidate is used for this call
//     (not cached) and momentum shrinks, floored at 0.
func (c *EliteCache) Consider(candidate EliteEntry, cfg config.EliteConfig, rng *rand.Rand) (chosen EliteEntry, reused bool) {
	if c.best == nil || candidate.Score >= replaceThreshold(c.best.Score, cfg.ReplaceRatio) {
		c.Store(candidate)
		return candidate, false
	}

	if rng.Float64() < c.AcceptProbability(cfg) {
		c.momentum++
		return c.best.clone(), true
	}

	if c.momentum > 0 {
		c.momentum--
	}
	return candidate, false
}
