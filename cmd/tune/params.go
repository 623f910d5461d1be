package main

import (
	"github.com/pthm-cable/dietsim/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of genetic algorithm parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Variation
			{Name: "mutation_rate", Path: "optimizer.mutation_rate", Min: 0.01, Max: 0.40, Default: 0.08},
			{Name: "gene_flip_rate", Path: "optimizer.gene_flip_rate", Min: 0.01, Max: 0.30, Default: 0.08},
			// Selection
			{Name: "elite_fraction", Path: "optimizer.elite_fraction", Min: 0.02, Max: 0.40, Default: 0.15},
			{Name: "tournament_size", Path: "optimizer.tournament_size", Min: 2, Max: 7, Default: 3},
			// Fitness weights
			{Name: "variety_bonus", Path: "optimizer.fitness.variety_bonus", Min: 2, Max: 20, Default: 10},
			{Name: "deviation_scale", Path: "optimizer.fitness.deviation_scale", Min: 25, Max: 400, Default: 100},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(spec.Max, max(spec.Min, v[i]))
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config and refreshes its
// derived values. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	o := &cfg.Optimizer
	o.MutationRate = clamped[0]
	o.GeneFlipRate = clamped[1]
	o.EliteFraction = clamped[2]
	o.TournamentSize = int(clamped[3] + 0.5)
	o.Fitness.VarietyBonus = clamped[4]
	o.Fitness.DeviationScale = clamped[5]

	cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	o := cfg.Optimizer
	return []float64{
		o.MutationRate,
		o.GeneFlipRate,
		o.EliteFraction,
		float64(o.TournamentSize),
		o.Fitness.VarietyBonus,
		o.Fitness.DeviationScale,
	}
}
