package main

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
)

func TestParamDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	if diff := cmp.Diff(pv.DefaultVector(), got); diff != "" {
		t.Errorf("defaults differ from defaults.yaml (-params +config):\n%s", diff)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	if diff := cmp.Diff(raw, back, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
	for i, v := range pv.Normalize(raw) {
		if v < 0 || v > 1 {
			t.Errorf("%s normalized default %v outside [0,1]", pv.Specs[i].Name, v)
		}
	}
}

func TestApplyToConfigClampsAndRecomputes(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := []float64{0.9, 0.2, 0.30, 4.6, 12, 10}
	pv.ApplyToConfig(cfg, values)

	o := cfg.Optimizer
	if o.MutationRate != 0.40 {
		t.Errorf("MutationRate = %v, want clamped 0.40", o.MutationRate)
	}
	if o.TournamentSize != 5 {
		t.Errorf("TournamentSize = %d, want 5", o.TournamentSize)
	}
	if o.Fitness.DeviationScale != 25 {
		t.Errorf("DeviationScale = %v, want clamped 25", o.Fitness.DeviationScale)
	}
	if want := int(float64(o.PopulationSize) * 0.30); cfg.Derived.EliteCount != want {
		t.Errorf("EliteCount = %d, want %d", cfg.Derived.EliteCount, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestCoverage(t *testing.T) {
	items := []food.Item{
		{Name: "Grilled Chicken", Calories: 165},
		{Name: "Brown Rice", Calories: 216},
		{Name: "Apple", Calories: 52},
	}
	if got := coverage(items); got != 0.75 {
		t.Errorf("coverage = %v, want 0.75", got)
	}
	if got := coverage(nil); got != 0 {
		t.Errorf("coverage(nil) = %v, want 0", got)
	}
}

func TestEvaluate(t *testing.T) {
	cfg := config.Default()
	cfg.Optimizer.PopulationSize = 12
	cfg.Optimizer.Generations = 4
	cfg.Recompute()

	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, []int64{1, 2}, []float64{1800, 2600}, cfg, food.DefaultCatalogue())

	a := fe.Evaluate(pv.DefaultVector())
	dev, cov := fe.Last()
	if math.IsInf(a, 0) || math.IsNaN(a) {
		t.Fatalf("fitness = %v", a)
	}
	if dev < 0 || cov < 0 || cov > 1 {
		t.Errorf("deviation = %v, coverage = %v", dev, cov)
	}
	if want := dev - coverageWeight*cov; math.Abs(a-want) > 1e-12 {
		t.Errorf("fitness = %v, want %v", a, want)
	}

	// Same parameters and seeds give the same fitness
	if b := fe.Evaluate(pv.DefaultVector()); a != b {
		t.Errorf("repeat evaluation = %v, want %v", b, a)
	}
}
