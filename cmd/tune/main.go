// Package main tunes the diet optimizer's genetic algorithm parameters with
// CMA-ES, minimising calorie deviation over a fixed set of targets.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
)

// LogRow is one evaluation in tune_log.csv. Parameter columns hold the
// clamped values actually used.
type LogRow struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	Deviation      float64 `csv:"deviation"`
	Coverage       float64 `csv:"coverage"`
	MutationRate   float64 `csv:"mutation_rate"`
	GeneFlipRate   float64 `csv:"gene_flip_rate"`
	EliteFraction  float64 `csv:"elite_fraction"`
	TournamentSize float64 `csv:"tournament_size"`
	VarietyBonus   float64 `csv:"variety_bonus"`
	DeviationScale float64 `csv:"deviation_scale"`
}

func newLogRow(eval int, fitness, deviation, coverage float64, p []float64) LogRow {
	return LogRow{
		Eval:           eval,
		Fitness:        fitness,
		Deviation:      deviation,
		Coverage:       coverage,
		MutationRate:   p[0],
		GeneFlipRate:   p[1],
		EliteFraction:  p[2],
		TournamentSize: p[3],
		VarietyBonus:   p[4],
		DeviationScale: p[5],
	}
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	cataloguePath := flag.String("catalogue", "", "Food catalogue CSV (empty = built-in)")
	seeds := flag.Int("seeds", 0, "Number of seeds per evaluation (0 = use config)")
	maxEvals := flag.Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	population := flag.Int("population", -1, "CMA-ES population size (0 = auto, -1 = use config)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()
	tc := baseCfg.Tune
	if *seeds > 0 {
		tc.Seeds = *seeds
	}
	if *maxEvals > 0 {
		tc.MaxEvals = *maxEvals
	}
	if *population >= 0 {
		tc.Population = *population
	}

	catalogue := food.DefaultCatalogue()
	if *cataloguePath != "" {
		f, err := os.Open(*cataloguePath)
		if err != nil {
			log.Fatalf("failed to open catalogue: %v", err)
		}
		catalogue, err = food.LoadCSV(f)
		f.Close()
		if err != nil {
			log.Fatalf("failed to load catalogue: %v", err)
		}
	}

	params := NewParamVector()

	// Generate seeds for evaluation
	evalSeeds := make([]int64, tc.Seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, evalSeeds, tc.Targets, baseCfg, catalogue)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	popSize := tc.Population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: tc.InitStepSize,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: tc.MaxEvals,
		Concurrent:      0, // Sequential evaluation; seeds run in parallel inside Evaluate
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			dev, cov := evaluator.Last()
			rows := []LogRow{newLogRow(evalCount, fitness, dev, cov, clamped)}
			if evalCount == 1 {
				err = gocsv.MarshalFile(&rows, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(&rows, logFile)
			}
			if err != nil {
				log.Printf("failed to write log row: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(tc.MaxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: deviation=%.4f coverage=%.2f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, tc.MaxEvals, dev, cov, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES tuning with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, tc.MaxEvals)
	fmt.Printf("Seeds per evaluation: %d, targets: %v\n", tc.Seeds, tc.Targets)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
