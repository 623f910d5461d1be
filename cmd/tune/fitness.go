package main

import (
	"math"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
	"github.com/pthm-cable/dietsim/optimizer"
)

// coverageWeight scales the category coverage reward against the relative
// calorie deviation.
const coverageWeight = 0.05

// balancedCategories are the groups a well-formed daily selection covers.
var balancedCategories = []food.Category{food.Protein, food.Carbohydrate, food.Vegetable, food.Fruit}

// FitnessEvaluator runs diet selections over fixed targets and seeds and
// scores a parameter vector.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	targets    []float64
	baseConfig *config.Config
	catalogue  *food.Catalogue

	mu           sync.Mutex
	lastDev      float64 // mean relative deviation from the most recent Evaluate call
	lastCoverage float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, targets []float64, baseCfg *config.Config, catalogue *food.Catalogue) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		targets:    targets,
		baseConfig: baseCfg,
		catalogue:  catalogue,
	}
}

// Last returns the deviation and coverage of the most recent evaluation.
func (fe *FitnessEvaluator) Last() (deviation, coverage float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDev, fe.lastCoverage
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	deviation float64
	coverage  float64
}

// Evaluate computes fitness for a raw parameter vector (lower = better):
// mean relative calorie deviation minus a small category coverage reward.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		return math.Inf(1)
	}

	// Run all seeds in parallel; each owns its random source
	results := make([]seedResult, len(fe.seeds))
	var g errgroup.Group
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSeed(cfg, seed)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return math.Inf(1)
	}

	devs := make([]float64, len(results))
	covs := make([]float64, len(results))
	for i, r := range results {
		devs[i] = r.deviation
		covs[i] = r.coverage
	}
	dev, cov := stat.Mean(devs, nil), stat.Mean(covs, nil)

	fe.mu.Lock()
	fe.lastDev, fe.lastCoverage = dev, cov
	fe.mu.Unlock()

	return dev - coverageWeight*cov
}

// runSeed selects a diet for every target with a fresh optimizer. Elitism
// is disabled so each selection reflects the search alone.
func (fe *FitnessEvaluator) runSeed(cfg *config.Config, seed int64) (seedResult, error) {
	opt := optimizer.New(cfg, rand.New(rand.NewSource(seed)), nil, nil)

	var r seedResult
	for _, target := range fe.targets {
		res, err := opt.SelectFrom(fe.catalogue, target)
		if err != nil {
			return seedResult{}, err
		}
		r.deviation += math.Abs(res.TotalCalories-res.Target) / res.Target
		r.coverage += coverage(res.Items)
	}
	n := float64(len(fe.targets))
	r.deviation /= n
	r.coverage /= n
	return r, nil
}

// coverage returns the fraction of balanced categories present in items.
func coverage(items []food.Item) float64 {
	groups := food.GroupByCategory(items)
	var present int
	for _, c := range balancedCategories {
		if len(groups[c]) > 0 {
			present++
		}
	}
	return float64(present) / float64(len(balancedCategories))
}
