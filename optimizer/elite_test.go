package optimizer

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
)

func entry(score float64, names ...string) EliteEntry {
	items := make([]food.Item, len(names))
	for i, n := range names {
		items[i] = food.Item{Name: n, Calories: 100}
	}
	return EliteEntry{Items: items, TotalCalories: food.TotalCalories(items), Score: score}
}

func TestEliteCacheSeedsWhenEmpty(t *testing.T) {
	c := NewEliteCache()
	rng := rand.New(rand.NewSource(1))

	chosen, reused := c.Consider(entry(10, "Egg"), config.Cfg().Optimizer.Elite, rng)
	if reused {
		t.Error("empty cache must not report reuse")
	}
	if chosen.Score != 10 {
		t.Errorf("chosen score = %v, want 10", chosen.Score)
	}
	best, ok := c.Best()
	if !ok || best.Score != 10 {
		t.Errorf("Best() = %v, %v; want score 10", best, ok)
	}
}

func TestEliteCacheReplaceThreshold(t *testing.T) {
	cfg := config.Cfg().Optimizer.Elite
	tests := []struct {
		name    string
		best    float64
		cand    float64
		replace bool
	}{
		{"better", 100, 120, true},
		{"within ratio", 100, 98.5, true},
		{"at ratio", 100, 98, true},
		{"clearly worse", 100, 90, false},
		{"negative better", -50, -49.5, true},
		{"negative within ratio", -50, -50.9, true},
		{"negative worse", -50, -60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewEliteCache()
			c.Store(entry(tt.best, "Rice"))
			// cap 0 forces the keep path
			keep := cfg
			keep.AcceptBase, keep.AcceptStep, keep.AcceptCap = 0, 0, 0

			c.Consider(entry(tt.cand, "Beans"), keep, rand.New(rand.NewSource(1)))
			best, _ := c.Best()
			replaced := best.Score == tt.cand
			if replaced != tt.replace {
				t.Errorf("replaced = %v, want %v", replaced, tt.replace)
			}
		})
	}
}

func TestEliteCacheMomentum(t *testing.T) {
	cfg := config.Cfg().Optimizer.Elite
	c := NewEliteCache()
	c.Store(entry(100, "Fish"))

	always := cfg
	always.AcceptBase, always.AcceptCap = 1, 1
	for i := 1; i <= 3; i++ {
		chosen, reused := c.Consider(entry(10, "Oats"), always, rand.New(rand.NewSource(int64(i))))
		if !reused || chosen.Score != 100 {
			t.Fatalf("step %d: reused = %v, score = %v", i, reused, chosen.Score)
		}
		if c.Momentum() != i {
			t.Fatalf("momentum = %d, want %d", c.Momentum(), i)
		}
	}

	if p := c.AcceptProbability(cfg); p != cfg.AcceptCap {
		t.Errorf("AcceptProbability at momentum 3 = %v, want cap %v", p, cfg.AcceptCap)
	}

	never := cfg
	never.AcceptBase, never.AcceptStep, never.AcceptCap = 0, 0, 0
	for want := 2; want >= 0; want-- {
		chosen, reused := c.Consider(entry(10, "Oats"), never, rand.New(rand.NewSource(1)))
		if reused || chosen.Score != 10 {
			t.Fatalf("keep path: reused = %v, score = %v", reused, chosen.Score)
		}
		if c.Momentum() != want {
			t.Fatalf("momentum = %d, want %d", c.Momentum(), want)
		}
	}
	c.Consider(entry(10, "Oats"), never, rand.New(rand.NewSource(1)))
	if c.Momentum() != 0 {
		t.Errorf("momentum went below zero: %d", c.Momentum())
	}

	// Rejected candidates are never cached
	if best, _ := c.Best(); best.Score != 100 {
		t.Errorf("best score = %v, want 100", best.Score)
	}
}

func TestEliteCacheReset(t *testing.T) {
	c := NewEliteCache()
	c.Store(entry(5, "Egg", "Rice"))
	c.momentum = 4

	for i := 0; i < 2; i++ {
		c.Reset()
		if !c.Empty() || c.Momentum() != 0 {
			t.Fatalf("reset %d: empty = %v, momentum = %d", i, c.Empty(), c.Momentum())
		}
	}
}

func TestEliteBestIsCopy(t *testing.T) {
	c := NewEliteCache()
	c.Store(entry(5, "Egg"))
	best, _ := c.Best()
	best.Items[0].Name = "Mutated"

	again, _ := c.Best()
	if again.Items[0].Name != "Egg" {
		t.Errorf("Best() exposed internal slice: %q", again.Items[0].Name)
	}
}

func TestEliteRestore(t *testing.T) {
	c := NewEliteCache()
	c.Restore(EliteEntry{Items: []food.Item{{Name: "Egg", Calories: 155}}, TotalCalories: 155, Score: 12}, 3)

	best, ok := c.Best()
	if !ok || best.Score != 12 || c.Momentum() != 3 {
		t.Errorf("after Restore: best=%+v ok=%v momentum=%d", best, ok, c.Momentum())
	}

	c.Restore(best, -2)
	if c.Momentum() != 0 {
		t.Errorf("negative momentum restored as %d", c.Momentum())
	}
}
