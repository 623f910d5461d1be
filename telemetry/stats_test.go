package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeSeriesStats(t *testing.T) {
	values := []float64{2000, 1800, 2200, 1900, 2100}
	s := ComputeSeriesStats(values)

	if math.Abs(s.Mean-2000) > 1e-9 {
		t.Errorf("mean = %v, want 2000", s.Mean)
	}
	// population std-dev of {-200,-100,0,100,200}
	if math.Abs(s.Std-math.Sqrt(20000)) > 1e-9 {
		t.Errorf("std = %v, want %v", s.Std, math.Sqrt(20000))
	}
	if s.Min != 1800 || s.Max != 2200 || s.P50 != 2000 {
		t.Errorf("min/p50/max = %v/%v/%v", s.Min, s.P50, s.Max)
	}
	if values[0] != 2000 {
		t.Error("input slice was reordered")
	}
}

func TestComputeSeriesStatsEmpty(t *testing.T) {
	if s := ComputeSeriesStats(nil); s != (SeriesStats{}) {
		t.Errorf("empty stats = %+v, want zero", s)
	}
}

func TestSummarize(t *testing.T) {
	weeks := []WeekStats{
		{Week: 1, WeightKg: 80, FatPercent: 28, BMI: 26.1, Intake: 2000, Target: 2050, DietID: "a", InFatBand: false},
		{Week: 2, WeightKg: 79.5, FatPercent: 27.6, BMI: 25.9, Intake: 2000, Target: 2040, DietID: "a", Reused: true},
		{Week: 3, WeightKg: 79, FatPercent: 27.2, BMI: 25.8, Intake: 1900, Target: 1990, DietID: "b", Stalled: true},
		{Week: 4, WeightKg: 78.5, FatPercent: 26.8, BMI: 25.6, Intake: 2100, Target: 2000, DietID: "b", InFatBand: true},
	}

	s := Summarize(weeks, 80.5, 28.4)

	if s.Weeks != 4 || s.StartWeightKg != 80.5 || s.EndWeightKg != 78.5 {
		t.Errorf("weeks/start/end = %d/%v/%v", s.Weeks, s.StartWeightKg, s.EndWeightKg)
	}
	if math.Abs(s.WeightTrendKgPerWeek-(-0.5)) > 1e-9 {
		t.Errorf("weight trend = %v, want -0.5", s.WeightTrendKgPerWeek)
	}
	if math.Abs(s.FatTrendPerWeek-(-0.4)) > 1e-9 {
		t.Errorf("fat trend = %v, want -0.4", s.FatTrendPerWeek)
	}
	if s.DistinctDiets != 2 || s.ReusedWeeks != 1 || s.StalledWeeks != 1 || s.WeeksInBand != 1 {
		t.Errorf("counts = %+v", s)
	}
	if math.Abs(s.Intake.Mean-2000) > 1e-9 {
		t.Errorf("intake mean = %v, want 2000", s.Intake.Mean)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 70, 20)
	if s.Weeks != 0 || s.EndWeightKg != 70 || s.EndFat != 20 {
		t.Errorf("empty summary = %+v", s)
	}
}
