// Package optimizer selects a daily set of foods approximating a caloric
// target with a genetic algorithm, a greedy calorie repair pass and
// cross-call elitism.
package optimizer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
	"github.com/pthm-cable/dietsim/nutrition"
	"github.com/pthm-cable/dietsim/telemetry"
)

// Errors returned by Select.
var (
	ErrEmptyCatalogue = errors.New("optimizer: empty food catalogue")
	ErrInvalidTarget  = errors.New("optimizer: caloric target must be positive")
)

// SearchStats summarises one genetic search.
type SearchStats struct {
	Generations int
	InitialBest float64
	FinalBest   float64
	FinalMean   float64
	FinalStdDev float64
	Repaired    bool
	RawCalories float64 // calories of the fittest chromosome before repair
	Evaluations int
}

// Result is the outcome of one Select call.
type Result struct {
	Items         []food.Item
	TotalCalories float64
	Target        float64 // jittered and clamped target actually optimised for
	Fitness       float64 // fitness of the returned selection at Target
	Reused        bool    // cached elite selection was reused
	Novel         bool    // selection was appended to the diet history
	Stats         SearchStats
}

// LogValue implements slog.LogValuer for structured logging.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("items", len(r.Items)),
		slog.Float64("total_calories", r.TotalCalories),
		slog.Float64("target", r.Target),
		slog.Float64("fitness", r.Fitness),
		slog.Bool("reused", r.Reused),
		slog.Bool("repaired", r.Stats.Repaired),
		slog.Float64("final_mean_fitness", r.Stats.FinalMean),
	)
}

// Optimizer runs diet selection. It is not safe for concurrent use: the
// random source, elite cache and history are shared across calls.
type Optimizer struct {
	cfg        config.OptimizerConfig
	eliteCount int
	rng        *rand.Rand
	elite      *EliteCache
	history    *telemetry.DietHistory
	tables     map[*food.Catalogue]*nutrition.Table
}

// New creates an optimizer. elite and history are owned by the caller and
// persist across Select calls; either may be nil to disable it.
func New(cfg *config.Config, rng *rand.Rand, elite *EliteCache, history *telemetry.DietHistory) *Optimizer {
	return &Optimizer{
		cfg:        cfg.Optimizer,
		eliteCount: cfg.Derived.EliteCount,
		rng:        rng,
		elite:      elite,
		history:    history,
		tables:     make(map[*food.Catalogue]*nutrition.Table),
	}
}

// Elite returns the elite cache used by the optimizer.
func (o *Optimizer) Elite() *EliteCache {
	return o.elite
}

// History returns the diet history used by the optimizer.
func (o *Optimizer) History() *telemetry.DietHistory {
	return o.history
}

// Select chooses a subset of foods approximating target kcal.
func (o *Optimizer) Select(foods []food.Item, target float64) (Result, error) {
	if len(foods) == 0 {
		return Result{}, ErrEmptyCatalogue
	}
	return o.selectWith(nutrition.NewTable(foods), target)
}

// SelectFrom is like Select but caches the catalogue's category table
// across calls.
func (o *Optimizer) SelectFrom(cat *food.Catalogue, target float64) (Result, error) {
	if cat.Len() == 0 {
		return Result{}, ErrEmptyCatalogue
	}
	table, ok := o.tables[cat]
	if !ok {
		table = nutrition.NewTable(cat.Items())
		o.tables[cat] = table
	}
	return o.selectWith(table, target)
}

func (o *Optimizer) selectWith(table *nutrition.Table, target float64) (Result, error) {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return Result{}, fmt.Errorf("%w: got %v", ErrInvalidTarget, target)
	}

	items := make([]food.Item, table.Len())
	for i := range items {
		items[i] = table.Item(i)
	}

	// Jitter avoids identical searches week over week
	jitter := (o.rng.Float64()*2 - 1) * o.cfg.TargetJitter
	target = clamp(target+jitter, o.cfg.TargetMin, o.cfg.TargetMax)

	ev := newEvaluator(table, target, o.cfg.Fitness)
	best, stats := o.search(ev)

	// Repair into the calorie band, then re-evaluate the changed genes
	stats.RawCalories = caloriesOf(best, items)
	stats.Repaired = repair(best, items, target, o.cfg.Repair)
	if best.Count() == 0 {
		best.Set(lightest(items), true)
		stats.Repaired = true
	}
	best.evaluate(ev)

	selected := selectedItems(best, items)
	candidate := EliteEntry{
		Items:         selected,
		TotalCalories: food.TotalCalories(selected),
		Score:         best.Fitness(),
	}

	chosen, reused := candidate, false
	if o.elite != nil {
		chosen, reused = o.elite.Consider(candidate, o.cfg.Elite, o.rng)
	}

	var novel bool
	if o.history != nil {
		novel = o.history.Record(chosen.Items, chosen.TotalCalories)
	}

	return Result{
		Items:         chosen.Items,
		TotalCalories: chosen.TotalCalories,
		Target:        target,
		Fitness:       chosen.Score,
		Reused:        reused,
		Novel:         novel,
		Stats:         stats,
	}, nil
}

// search runs the generational loop and returns a copy of the fittest
// chromosome of the final generation.
func (o *Optimizer) search(ev *evaluator) (*Chromosome, SearchStats) {
	n := o.cfg.PopulationSize
	genes := ev.table.Len()

	pop := make([]*Chromosome, n)
	for i := range pop {
		pop[i] = newRandomChromosome(genes, o.rng)
	}
	stats := SearchStats{Generations: o.cfg.Generations}
	stats.Evaluations += o.evaluate(pop, ev)
	rankByFitness(pop)
	stats.InitialBest = pop[0].fitness

	elite := o.eliteCount
	if elite > n {
		elite = n
	}

	for gen := 0; gen < o.cfg.Generations; gen++ {
		next := make([]*Chromosome, 0, n)
		for i := 0; i < elite; i++ {
			next = append(next, pop[i].Clone())
		}

		for len(next) < n {
			p1 := tournament(pop, o.cfg.TournamentSize, o.rng)
			p2 := tournament(pop, o.cfg.TournamentSize, o.rng)
			c1, c2 := crossover(p1, p2, o.rng)
			mutate(c1, o.cfg.MutationRate, o.cfg.GeneFlipRate, o.rng)
			mutate(c2, o.cfg.MutationRate, o.cfg.GeneFlipRate, o.rng)
			next = append(next, c1)
			if len(next) < n {
				next = append(next, c2)
			}
		}

		stats.Evaluations += o.evaluate(next, ev)
		rankByFitness(next)
		pop = next
	}

	fits := make([]float64, len(pop))
	for i, c := range pop {
		fits[i] = c.fitness
	}
	stats.FinalBest = floats.Max(fits)
	stats.FinalMean, stats.FinalStdDev = stat.MeanStdDev(fits, nil)

	return pop[0].Clone(), stats
}

// evaluate refreshes every stale chromosome and returns how many were
// evaluated. Evaluation uses no randomness, so running it on a worker group
// does not change results.
func (o *Optimizer) evaluate(pop []*Chromosome, ev *evaluator) int {
	stale := make([]*Chromosome, 0, len(pop))
	for _, c := range pop {
		if c.stale {
			stale = append(stale, c)
		}
	}

	if o.cfg.Parallelism <= 1 || len(stale) < 2 {
		for _, c := range stale {
			c.evaluate(ev)
		}
		return len(stale)
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.Parallelism)
	for _, c := range stale {
		g.Go(func() error {
			c.evaluate(ev)
			return nil
		})
	}
	_ = g.Wait()
	return len(stale)
}

// Breakdown returns the fitness terms of a selection at target. Items not in
// foods are ignored.
func Breakdown(cfg config.FitnessConfig, foods []food.Item, selection []food.Item, target float64) FitnessBreakdown {
	table := nutrition.NewTable(foods)
	chosen := make(map[string]bool, len(selection))
	for _, it := range selection {
		chosen[it.Name] = true
	}
	genes := make([]bool, len(foods))
	for i, it := range foods {
		genes[i] = chosen[it.Name]
	}
	return newEvaluator(table, target, cfg).breakdown(genes)
}

func selectedItems(c *Chromosome, items []food.Item) []food.Item {
	out := make([]food.Item, 0, c.Count())
	for i, g := range c.genes {
		if g {
			out = append(out, items[i])
		}
	}
	return out
}

func caloriesOf(c *Chromosome, items []food.Item) float64 {
	var total float64
	for i, g := range c.genes {
		if g {
			total += items[i].Calories
		}
	}
	return total
}

func lightest(items []food.Item) int {
	idx := 0
	for i, it := range items {
		if it.Calories < items[idx].Calories {
			idx = i
		}
	}
	return idx
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
