// Package sim runs the weekly body-composition control loop: it derives a
// caloric target from the current body metrics, asks the diet optimizer for
// a selection meeting it and updates weight and fat from the resulting
// energy balance.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
	"github.com/pthm-cable/dietsim/optimizer"
	"github.com/pthm-cable/dietsim/telemetry"
	"github.com/pthm-cable/dietsim/training"
)

// ErrInvalidWeeks is returned by Simulate for a negative week count.
var ErrInvalidWeeks = errors.New("sim: weeks must be >= 0")

// Options configures a Simulator.
type Options struct {
	Subject     string         // stamped on telemetry and snapshots
	Plan        *training.Plan // recomputes training expenditure from weight each week
	LogWeeks    bool           // log WeekStats and bookmarks via slog
	SnapshotDir string         // save a snapshot on every bookmark
	OnWeek      func(Week) error
}

// Week is everything produced by one simulated week.
type Week struct {
	Stats     telemetry.WeekStats
	Bookmarks []telemetry.Bookmark
	Diet      optimizer.Result
}

// Simulator advances a body state week by week.
type Simulator struct {
	run  *Run
	cfg  config.SimulationConfig
	opts Options

	collector *telemetry.Collector
	detector  *telemetry.BookmarkDetector
	perf      *telemetry.PerfCollector
	weeks     []telemetry.WeekStats
	bookmarks int
}

// New creates a simulator drawing all randomness and cross-week state from
// run.
func New(run *Run, opts Options) *Simulator {
	cfg := run.Config()
	return &Simulator{
		run:       run,
		cfg:       cfg.Simulation,
		opts:      opts,
		collector: telemetry.NewCollector(opts.Subject),
		detector:  telemetry.NewBookmarkDetector(cfg.Telemetry),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}
}

// Run returns the run backing the simulator.
func (s *Simulator) Run() *Run { return s.run }

// Weeks returns the stats of every week simulated since the last Reset.
func (s *Simulator) Weeks() []telemetry.WeekStats {
	return append([]telemetry.WeekStats(nil), s.weeks...)
}

// Perf returns timing statistics over the recent weeks.
func (s *Simulator) Perf() telemetry.PerfStats {
	return s.perf.Stats()
}

// Reset clears the run and all telemetry so the simulator can start an
// independent simulation.
func (s *Simulator) Reset() {
	s.run.Reset()
	s.collector.Reset()
	s.detector.Reset()
	s.weeks = nil
	s.bookmarks = 0
}

// Summary summarises the weeks simulated since the last Reset. startWeight
// and startFat describe the body before the first of them.
func (s *Simulator) Summary(startWeight, startFat float64) telemetry.Summary {
	sum := telemetry.Summarize(s.weeks, startWeight, startFat)
	sum.Subject = s.opts.Subject
	sum.Seed = s.run.Seed()
	sum.Bookmarks = s.bookmarks
	return sum
}

// Snapshot captures the current run state for state.
func (s *Simulator) Snapshot(state *body.State, bm *telemetry.Bookmark) *telemetry.Snapshot {
	return s.run.snapshot(s.opts.Subject, state, bm)
}

// Simulate advances state by weeks weeks, appending one entry to each of
// its history series per week.
func (s *Simulator) Simulate(state *body.State, catalogue *food.Catalogue, weeks int) error {
	if weeks < 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidWeeks, weeks)
	}
	if catalogue.Len() == 0 {
		return optimizer.ErrEmptyCatalogue
	}
	for range weeks {
		if _, err := s.Step(state, catalogue); err != nil {
			return err
		}
	}
	return nil
}

// Step simulates a single week.
func (s *Simulator) Step(state *body.State, catalogue *food.Catalogue) (Week, error) {
	rng := s.run.Rand()
	week := state.Weeks() + 1
	if week == 1 && state.StartFatPercent == 0 {
		state.StartFatPercent = state.FatPercent
	}

	s.perf.StartWeek()
	s.perf.StartPhase(telemetry.PhaseTarget)

	if s.opts.Plan != nil {
		state.TrainingKcal = s.opts.Plan.DailyAverageKcal(state.WeightKg)
	}

	tdee := state.TDEE()
	adj := Adjustment(s.cfg, state.BMI(), state.FatPercent, state.Sex)
	stalled := s.stalled(state)
	if stalled {
		adj *= uniform(rng, s.cfg.StallBoostMin, s.cfg.StallBoostMax)
	}
	target := Target(s.cfg, tdee, adj) + uniform(rng, -s.cfg.DailyJitter, s.cfg.DailyJitter)
	s.collector.RecordTarget(tdee, adj, target, stalled)

	s.perf.StartPhase(telemetry.PhaseOptimize)
	res, err := s.run.Optimizer().SelectFrom(catalogue, target)
	if err != nil {
		return Week{}, fmt.Errorf("week %d: %w", week, err)
	}
	s.collector.RecordDiet(res.Items, res.TotalCalories, res.Fitness, res.Reused, res.Stats.Repaired, res.Novel)

	s.perf.StartPhase(telemetry.PhaseUpdate)
	u := Compose(s.cfg, state, res.TotalCalories, tdee, s.fatShare(rng, res.TotalCalories-tdee))
	state.WeightKg = u.WeightKg
	state.FatPercent = u.FatPercent
	state.Record(state.BMI(), res.TotalCalories, state.FatPercent)
	s.collector.RecordUpdate(u.WeightDelta, u.FatShare, u.Clamped)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	stats := s.collector.Flush(week, state)
	s.weeks = append(s.weeks, stats)
	bookmarks := s.detector.Check(stats)
	s.bookmarks += len(bookmarks)
	s.perf.EndWeek()

	if s.opts.LogWeeks {
		stats.LogStats()
	}
	for i := range bookmarks {
		if s.opts.LogWeeks {
			bookmarks[i].LogBookmark()
		}
		if s.opts.SnapshotDir != "" {
			s.saveSnapshot(state, &bookmarks[i])
		}
	}

	w := Week{Stats: stats, Bookmarks: bookmarks, Diet: res}
	if s.opts.OnWeek != nil {
		if err := s.opts.OnWeek(w); err != nil {
			return w, fmt.Errorf("week %d: %w", week, err)
		}
	}
	return w, nil
}

func (s *Simulator) saveSnapshot(state *body.State, bm *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(s.Snapshot(state, bm), s.opts.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "week", bm.Week)
}

// stalled reports whether the most recent weekly fat change was below the
// stall threshold.
func (s *Simulator) stalled(state *body.State) bool {
	delta, ok := state.FatChange()
	return ok && math.Abs(delta) < s.cfg.StallThreshold
}

// fatShare draws the fraction of the weight change that is fat.
func (s *Simulator) fatShare(rng *rand.Rand, dailyDelta float64) float64 {
	if dailyDelta < 0 {
		return uniform(rng, s.cfg.DeficitFatShareMin, s.cfg.DeficitFatShareMax)
	}
	return uniform(rng, s.cfg.SurplusFatShareMin, s.cfg.SurplusFatShareMax)
}

// Adjustment returns the daily kcal correction that steers BMI and fat
// percentage toward their healthy ranges. Each term is capped at
// AdjustmentCap steps.
func Adjustment(cfg config.SimulationConfig, bmi, fatPercent float64, sex body.Sex) float64 {
	var adj float64
	switch {
	case bmi > cfg.BMIHigh:
		adj -= cfg.BMIStep * math.Min(cfg.AdjustmentCap, (bmi-cfg.BMIHigh)/5)
	case bmi < cfg.BMILow:
		adj += cfg.BMIStep * math.Min(cfg.AdjustmentCap, (cfg.BMILow-bmi)/3)
	}

	lo, hi := body.FatBand(sex)
	switch {
	case fatPercent > hi:
		adj -= cfg.FatStep * math.Min(cfg.AdjustmentCap, (fatPercent-hi)/5)
	case fatPercent < lo:
		adj += cfg.FatStep * math.Min(cfg.AdjustmentCap, (lo-fatPercent)/3)
	}
	return adj
}

// Target clamps tdee + adjustment to the simulation target bounds.
func Target(cfg config.SimulationConfig, tdee, adjustment float64) float64 {
	return clamp(tdee+adjustment, cfg.TargetMin, cfg.TargetMax)
}

// Update is the body composition after one week.
type Update struct {
	WeightKg    float64
	FatPercent  float64
	FatShare    float64
	WeightDelta float64 // unclamped weekly change in kg
	Clamped     bool    // weight or fat hit a bound
}

// Compose applies one week of energy balance to state without mutating it.
// intake and tdee are daily kcal; fatShare is the fraction of the weight
// change attributed to fat mass.
func Compose(cfg config.SimulationConfig, state *body.State, intake, tdee, fatShare float64) Update {
	weekly := (intake - tdee) * 7
	dw := weekly / cfg.KcalPerKg

	rawWeight := state.WeightKg + dw
	weight := clamp(rawWeight, cfg.WeightMin, cfg.WeightMax)

	fatMass := math.Max(0, state.FatMassKg()+dw*fatShare)
	rawFat := 100 * fatMass / weight
	fat := clamp(rawFat, cfg.FatMin, cfg.FatMax)

	return Update{
		WeightKg:    weight,
		FatPercent:  fat,
		FatShare:    fatShare,
		WeightDelta: dw,
		Clamped:     weight != rawWeight || fat != rawFat,
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
