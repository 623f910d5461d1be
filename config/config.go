// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Optimizer  OptimizerConfig  `yaml:"optimizer"`
	Simulation SimulationConfig `yaml:"simulation"`
	History    HistoryConfig    `yaml:"history"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Cohort     CohortConfig     `yaml:"cohort"`
	Tune       TuneConfig       `yaml:"tune"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// OptimizerConfig holds genetic algorithm parameters for diet selection.
type OptimizerConfig struct {
	PopulationSize int     `yaml:"population_size"`
	Generations    int     `yaml:"generations"`
	EliteFraction  float64 `yaml:"elite_fraction"`  // share of each generation copied unchanged
	TournamentSize int     `yaml:"tournament_size"`
	MutationRate   float64 `yaml:"mutation_rate"`   // chance a child is mutated at all
	GeneFlipRate   float64 `yaml:"gene_flip_rate"`  // per-gene flip chance inside a mutation
	TargetJitter   float64 `yaml:"target_jitter"`   // +/- kcal noise before clamping
	TargetMin      float64 `yaml:"target_min"`
	TargetMax      float64 `yaml:"target_max"`
	Parallelism    int     `yaml:"parallelism"`     // fitness evaluation workers (1 = sequential)

	Repair  RepairConfig  `yaml:"repair"`
	Fitness FitnessConfig `yaml:"fitness"`
	Elite   EliteConfig   `yaml:"elite"`
}

// RepairConfig holds the post-search calorie repair band.
type RepairConfig struct {
	Low      float64 `yaml:"low"`       // lower bound as a fraction of the target
	High     float64 `yaml:"high"`      // upper bound as a fraction of the target
	MinItems int     `yaml:"min_items"` // removal never drops below this many foods
}

// FitnessConfig holds the weights of the chromosome fitness function.
type FitnessConfig struct {
	EmptyPenalty       float64 `yaml:"empty_penalty"`
	VarietyMin         int     `yaml:"variety_min"`
	VarietyMax         int     `yaml:"variety_max"`
	VarietyBonus       float64 `yaml:"variety_bonus"`
	VarietyDecay       float64 `yaml:"variety_decay"`
	ProteinBonus       float64 `yaml:"protein_bonus"`
	CarbohydrateBonus  float64 `yaml:"carbohydrate_bonus"`
	VegetableBonus     float64 `yaml:"vegetable_bonus"`
	FruitBonus         float64 `yaml:"fruit_bonus"`
	OverrepLimit       int     `yaml:"overrep_limit"`
	OverrepPenalty     float64 `yaml:"overrep_penalty"`
	DeviationTolerance float64 `yaml:"deviation_tolerance"`
	DeviationScale     float64 `yaml:"deviation_scale"`
}

// EliteConfig holds the cross-call elitism acceptance policy.
type EliteConfig struct {
	AcceptBase   float64 `yaml:"accept_base"`   // reuse probability at zero momentum
	AcceptStep   float64 `yaml:"accept_step"`   // added per unit of momentum
	AcceptCap    float64 `yaml:"accept_cap"`    // upper bound on reuse probability
	ReplaceRatio float64 `yaml:"replace_ratio"` // fitness >= ratio*best replaces the cached best
}

// SimulationConfig holds the weekly body-composition control loop parameters.
type SimulationConfig struct {
	KcalPerKg     float64 `yaml:"kcal_per_kg"`
	WeightMin     float64 `yaml:"weight_min"`
	WeightMax     float64 `yaml:"weight_max"`
	FatMin        float64 `yaml:"fat_min"`
	FatMax        float64 `yaml:"fat_max"`
	TargetMin     float64 `yaml:"target_min"`
	TargetMax     float64 `yaml:"target_max"`
	DailyJitter   float64 `yaml:"daily_jitter"`
	BMIHigh       float64 `yaml:"bmi_high"`
	BMILow        float64 `yaml:"bmi_low"`
	BMIStep       float64 `yaml:"bmi_step"`       // kcal per unit of scaled BMI error
	FatStep       float64 `yaml:"fat_step"`       // kcal per unit of scaled fat error
	AdjustmentCap float64 `yaml:"adjustment_cap"` // max multiple of a step per term

	StallThreshold float64 `yaml:"stall_threshold"`
	StallBoostMin  float64 `yaml:"stall_boost_min"`
	StallBoostMax  float64 `yaml:"stall_boost_max"`

	DeficitFatShareMin float64 `yaml:"deficit_fat_share_min"`
	DeficitFatShareMax float64 `yaml:"deficit_fat_share_max"`
	SurplusFatShareMin float64 `yaml:"surplus_fat_share_min"`
	SurplusFatShareMax float64 `yaml:"surplus_fat_share_max"`
}

// HistoryConfig holds diet history parameters.
type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
	StallWeeks          int `yaml:"stall_weeks"`
	DietStreakWeeks     int `yaml:"diet_streak_weeks"`
}

// CohortConfig holds batch simulation parameters.
type CohortConfig struct {
	Parallelism int `yaml:"parallelism"`
}

// TuneConfig holds CMA-ES hyper-parameter search settings.
type TuneConfig struct {
	Seeds        int       `yaml:"seeds"`
	MaxEvals     int       `yaml:"max_evals"`
	Population   int       `yaml:"population"` // 0 = auto
	InitStepSize float64   `yaml:"init_step_size"`
	Targets      []float64 `yaml:"targets"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	EliteCount int // Optimizer.EliteFraction * PopulationSize, at least 1
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Tune.Targets = append([]float64(nil), c.Tune.Targets...)
	return &cp
}

// Validate reports every out-of-range parameter.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	o := c.Optimizer
	check(o.PopulationSize >= 2, "optimizer.population_size must be >= 2, got %d", o.PopulationSize)
	check(o.Generations >= 0, "optimizer.generations must be >= 0, got %d", o.Generations)
	check(o.EliteFraction >= 0 && o.EliteFraction < 1, "optimizer.elite_fraction must be in [0,1), got %v", o.EliteFraction)
	check(o.TournamentSize >= 1, "optimizer.tournament_size must be >= 1, got %d", o.TournamentSize)
	check(o.MutationRate >= 0 && o.MutationRate <= 1, "optimizer.mutation_rate must be in [0,1], got %v", o.MutationRate)
	check(o.GeneFlipRate >= 0 && o.GeneFlipRate <= 1, "optimizer.gene_flip_rate must be in [0,1], got %v", o.GeneFlipRate)
	check(o.TargetMin > 0 && o.TargetMin <= o.TargetMax, "optimizer target bounds invalid: [%v,%v]", o.TargetMin, o.TargetMax)
	check(o.Repair.Low > 0 && o.Repair.Low <= o.Repair.High, "optimizer.repair band invalid: [%v,%v]", o.Repair.Low, o.Repair.High)
	check(o.Repair.MinItems >= 0, "optimizer.repair.min_items must be >= 0, got %d", o.Repair.MinItems)
	check(o.Elite.AcceptCap >= 0 && o.Elite.AcceptCap <= 1, "optimizer.elite.accept_cap must be in [0,1], got %v", o.Elite.AcceptCap)
	check(o.Fitness.DeviationScale > 0, "optimizer.fitness.deviation_scale must be > 0, got %v", o.Fitness.DeviationScale)

	s := c.Simulation
	check(s.KcalPerKg > 0, "simulation.kcal_per_kg must be > 0, got %v", s.KcalPerKg)
	check(s.WeightMin > 0 && s.WeightMin < s.WeightMax, "simulation weight bounds invalid: [%v,%v]", s.WeightMin, s.WeightMax)
	check(s.FatMin >= 0 && s.FatMin < s.FatMax && s.FatMax <= 100, "simulation fat bounds invalid: [%v,%v]", s.FatMin, s.FatMax)
	check(s.TargetMin > 0 && s.TargetMin <= s.TargetMax, "simulation target bounds invalid: [%v,%v]", s.TargetMin, s.TargetMax)
	check(s.StallBoostMin <= s.StallBoostMax, "simulation stall boost range invalid: [%v,%v]", s.StallBoostMin, s.StallBoostMax)
	check(s.DeficitFatShareMin <= s.DeficitFatShareMax, "simulation deficit fat share range invalid")
	check(s.SurplusFatShareMin <= s.SurplusFatShareMax, "simulation surplus fat share range invalid")

	check(c.History.Capacity >= 1, "history.capacity must be >= 1, got %d", c.History.Capacity)

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	elite := int(float64(c.Optimizer.PopulationSize) * c.Optimizer.EliteFraction)
	if elite < 1 {
		elite = 1
	}
	c.Derived.EliteCount = elite
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() {
	c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
