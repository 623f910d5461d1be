package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a finished run.
type Summary struct {
	RunID   string `json:"run_id"`
	Subject string `json:"subject,omitempty"`
	Seed    int64  `json:"seed"`
	Weeks   int    `json:"weeks"`

	StartWeightKg float64 `json:"start_weight_kg"`
	EndWeightKg   float64 `json:"end_weight_kg"`
	StartFat      float64 `json:"start_fat_pct"`
	EndFat        float64 `json:"end_fat_pct"`
	EndBMI        float64 `json:"end_bmi"`

	// Least-squares slope of weight over weeks
	WeightTrendKgPerWeek float64 `json:"weight_trend_kg_per_week"`
	FatTrendPerWeek      float64 `json:"fat_trend_pct_per_week"`

	Intake SeriesStats `json:"intake"`
	Target SeriesStats `json:"target"`

	DistinctDiets int `json:"distinct_diets"`
	ReusedWeeks   int `json:"reused_weeks"`
	StalledWeeks  int `json:"stalled_weeks"`
	ClampedWeeks  int `json:"clamped_weeks"`
	WeeksInBand   int `json:"weeks_in_fat_band"`
	Bookmarks     int `json:"bookmarks"`
}

// Summarize builds a Summary from the weekly records. startWeight and
// startFat describe the body before the first week.
func Summarize(weeks []WeekStats, startWeight, startFat float64) Summary {
	s := Summary{
		Weeks:         len(weeks),
		StartWeightKg: startWeight,
		StartFat:      startFat,
		EndWeightKg:   startWeight,
		EndFat:        startFat,
	}
	if len(weeks) == 0 {
		return s
	}

	last := weeks[len(weeks)-1]
	s.Subject = last.Subject
	s.EndWeightKg = last.WeightKg
	s.EndFat = last.FatPercent
	s.EndBMI = last.BMI

	xs := make([]float64, len(weeks))
	weights := make([]float64, len(weeks))
	fats := make([]float64, len(weeks))
	intake := make([]float64, len(weeks))
	target := make([]float64, len(weeks))
	diets := make(map[string]struct{})

	for i, w := range weeks {
		xs[i] = float64(w.Week)
		weights[i] = w.WeightKg
		fats[i] = w.FatPercent
		intake[i] = w.Intake
		target[i] = w.Target
		diets[w.DietID] = struct{}{}
		if w.Reused {
			s.ReusedWeeks++
		}
		if w.Stalled {
			s.StalledWeeks++
		}
		if w.Clamped {
			s.ClampedWeeks++
		}
		if w.InFatBand {
			s.WeeksInBand++
		}
	}

	if len(weeks) > 1 {
		_, s.WeightTrendKgPerWeek = stat.LinearRegression(xs, weights, nil, false)
		_, s.FatTrendPerWeek = stat.LinearRegression(xs, fats, nil, false)
	}
	s.Intake = ComputeSeriesStats(intake)
	s.Target = ComputeSeriesStats(target)
	s.DistinctDiets = len(diets)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("weeks", s.Weeks),
		slog.Float64("start_weight_kg", s.StartWeightKg),
		slog.Float64("end_weight_kg", s.EndWeightKg),
		slog.Float64("start_fat_pct", s.StartFat),
		slog.Float64("end_fat_pct", s.EndFat),
		slog.Float64("end_bmi", s.EndBMI),
		slog.Float64("weight_trend", s.WeightTrendKgPerWeek),
		slog.Float64("intake_mean", s.Intake.Mean),
		slog.Int("distinct_diets", s.DistinctDiets),
		slog.Int("reused_weeks", s.ReusedWeeks),
		slog.Int("bookmarks", s.Bookmarks),
	)
}
