package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
	"github.com/pthm-cable/dietsim/sim"
	"github.com/pthm-cable/dietsim/telemetry"
)

// defaultProfile is simulated when no -profile is given.
var defaultProfile = body.Profile{
	Name:           "default",
	WeightKg:       75,
	HeightM:        1.75,
	AgeYears:       30,
	Sex:            body.Male,
	FatPercent:     25,
	ActivityFactor: 1.55,
	TrainingKcal:   400,
	Weeks:          36,
}

// options carries the parsed command line.
type options struct {
	configPath    string
	seed          int64
	weeks         int
	cataloguePath string
	profilePath   string
	planName      string
	outputDir     string
	snapshotDir   string
	resume        string
	logWeeks      bool
}

func main() {
	var opts options

	// CLI flags
	flag.StringVar(&opts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.Int64Var(&opts.seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.IntVar(&opts.weeks, "weeks", 0, "Weeks to simulate (0 = use profile)")
	flag.StringVar(&opts.cataloguePath, "catalogue", "", "Food catalogue CSV with name,calories columns (empty = built-in)")
	flag.StringVar(&opts.profilePath, "profile", "", "Profile YAML; the first entry is simulated (empty = built-in)")
	flag.StringVar(&opts.planName, "plan", "", "Training split: ABC, ABCD or PPL (overrides the profile)")
	flag.StringVar(&opts.outputDir, "output-dir", "", "Output directory for CSV logs, summary and config snapshot")
	flag.StringVar(&opts.snapshotDir, "snapshot-dir", "", "Directory for snapshots saved on bookmarks")
	flag.StringVar(&opts.resume, "resume", "", "Resume from a snapshot file")
	flag.BoolVar(&opts.logWeeks, "log-weeks", false, "Log every week via slog")

	flag.Parse()

	if err := config.Init(opts.configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(config.Cfg(), opts); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// run simulates one subject. Output files are closed before it returns.
func run(cfg *config.Config, opts options) error {
	rngSeed := opts.seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	catalogue, err := loadCatalogue(opts.cataloguePath)
	if err != nil {
		return fmt.Errorf("loading catalogue: %w", err)
	}

	profile, err := loadProfile(opts.profilePath)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	if opts.weeks > 0 {
		profile.Weeks = opts.weeks
	}
	if opts.planName != "" {
		profile.Plan, profile.Days = opts.planName, nil
	}

	state, err := profile.NewState()
	if err != nil {
		return err
	}
	plan, err := profile.TrainingPlan()
	if err != nil {
		return err
	}

	om, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	r := sim.NewRun(cfg, rngSeed)
	remaining := profile.Weeks
	if opts.resume != "" {
		snap, err := telemetry.LoadSnapshot(opts.resume)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		if state, err = r.Restore(snap); err != nil {
			return fmt.Errorf("restoring snapshot: %w", err)
		}
		remaining = max(0, profile.Weeks-state.Weeks())
		slog.Info("resuming", "path", opts.resume, "week", snap.Week, "remaining", remaining)
	}
	startWeight, startFat := state.WeightKg, state.FatPercent

	var s *sim.Simulator
	perfEvery := max(1, cfg.Telemetry.PerfCollectorWindow)
	s = sim.New(r, sim.Options{
		Subject:     profile.Name,
		Plan:        plan,
		LogWeeks:    opts.logWeeks,
		SnapshotDir: opts.snapshotDir,
		OnWeek: func(w sim.Week) error {
			if err := om.WriteWeek(w.Stats); err != nil {
				return err
			}
			for _, bm := range w.Bookmarks {
				if err := om.WriteBookmark(bm); err != nil {
					return err
				}
			}
			if w.Stats.Week%perfEvery == 0 {
				return om.WritePerf(s.Perf(), w.Stats.Week)
			}
			return nil
		},
	})

	planName := ""
	if plan != nil {
		planName = plan.Name
	}
	slog.Info("starting simulation",
		"seed", rngSeed,
		"weeks", remaining,
		"foods", catalogue.Len(),
		"plan", planName,
		"body", state,
	)

	if err := s.Simulate(state, catalogue, remaining); err != nil {
		return err
	}

	summary := s.Summary(startWeight, startFat)
	if err := om.WriteDiets(profile.Name, r.History()); err != nil {
		slog.Error("failed to write diets", "error", err)
	}
	if err := om.WriteDietHistory("diets.json", r.History()); err != nil {
		slog.Error("failed to write diet history", "error", err)
	}
	if err := om.WriteSummary(summary); err != nil {
		slog.Error("failed to write summary", "error", err)
	}

	s.Perf().LogStats()
	slog.Info("simulation complete", "summary", summary, "output_dir", om.Dir())
	return nil
}

func loadCatalogue(path string) (*food.Catalogue, error) {
	if path == "" {
		return food.DefaultCatalogue(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return food.LoadCSV(f)
}

func loadProfile(path string) (body.Profile, error) {
	if path == "" {
		return defaultProfile, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return body.Profile{}, err
	}
	defer f.Close()

	profiles, err := body.LoadProfiles(f)
	if err != nil {
		return body.Profile{}, err
	}
	if len(profiles) == 0 {
		return body.Profile{}, body.ErrInvalidProfile
	}
	return profiles[0], nil
}
