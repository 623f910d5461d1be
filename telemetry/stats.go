// Package telemetry collects weekly statistics, bookmarks, snapshots and diet
// history, and writes them to CSV, JSON and YAML outputs.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WeekStats holds everything recorded about one simulated week.
type WeekStats struct {
	Subject string `csv:"subject"`
	Week    int    `csv:"week"` // 1-based

	// Body state after the update
	WeightKg    float64 `csv:"weight_kg"`
	FatPercent  float64 `csv:"fat_pct"`
	BMI         float64 `csv:"bmi"`
	BMICategory string  `csv:"bmi_category"`
	InFatBand   bool    `csv:"in_fat_band"`

	// Energy balance
	TDEE        float64 `csv:"tdee"`
	Adjustment  float64 `csv:"adjustment"`
	Stalled     bool    `csv:"stalled"` // stall correction applied
	Target      float64 `csv:"target"`
	Intake      float64 `csv:"intake"`
	DailyDelta  float64 `csv:"daily_delta"` // intake - TDEE
	WeightDelta float64 `csv:"weight_delta"`
	FatShare    float64 `csv:"fat_share"`
	Clamped     bool    `csv:"clamped"` // weight or fat hit a bound

	// Diet
	DietID   string  `csv:"diet_id"`
	Items    int     `csv:"items"`
	Fitness  float64 `csv:"fitness"`
	Reused   bool    `csv:"reused"`   // cached elite selection reused
	NewDiet  bool    `csv:"new_diet"` // first time this diet entered the history
	Repaired bool    `csv:"repaired"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// SeriesStats summarises one weekly series.
type SeriesStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	P10  float64 `json:"p10"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
	Max  float64 `json:"max"`
}

// ComputeSeriesStats calculates mean, population std-dev and percentiles.
func ComputeSeriesStats(values []float64) SeriesStats {
	n := len(values)
	if n == 0 {
		return SeriesStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := stat.Mean(values, nil)
	return SeriesStats{
		Mean: mean,
		Std:  stat.PopStdDev(values, nil),
		Min:  sorted[0],
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
		Max:  sorted[n-1],
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WeekStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("week", s.Week),
		slog.Float64("weight_kg", s.WeightKg),
		slog.Float64("fat_pct", s.FatPercent),
		slog.Float64("bmi", s.BMI),
		slog.Float64("tdee", s.TDEE),
		slog.Float64("target", s.Target),
		slog.Float64("intake", s.Intake),
		slog.Int("items", s.Items),
		slog.Bool("reused", s.Reused),
	}
	if s.Subject != "" {
		attrs = append([]slog.Attr{slog.String("subject", s.Subject)}, attrs...)
	}
	if s.Stalled {
		attrs = append(attrs, slog.Bool("stalled", true))
	}
	if s.Clamped {
		attrs = append(attrs, slog.Bool("clamped", true))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the week using slog.
func (s WeekStats) LogStats() {
	slog.Info("week", "stats", s)
}
