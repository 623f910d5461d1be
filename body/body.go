// Package body models a person's body composition and the energy
// expenditure equations driving the weekly simulation.
package body

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Sex selects the metabolic equations and the healthy fat band.
type Sex uint8

const (
	Male Sex = iota
	Female
)

var ErrUnknownSex = errors.New("body: sex must be M or F")

// ParseSex accepts "M"/"F" and the spelled-out English or Portuguese names,
// case-insensitively.
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "masculino":
		return Male, nil
	case "f", "female", "feminino":
		return Female, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSex, s)
}

func (s Sex) String() string {
	if s == Female {
		return "F"
	}
	return "M"
}

// MarshalText implements encoding.TextMarshaler so Sex round-trips as M/F in
// YAML and JSON.
func (s Sex) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Sex) UnmarshalText(b []byte) error {
	v, err := ParseSex(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// BMI returns weight / height².
func BMI(weightKg, heightM float64) float64 {
	return weightKg / (heightM * heightM)
}

// BMR returns the Harris-Benedict basal metabolic rate in kcal/day.
func BMR(weightKg, heightM, ageYears float64, sex Sex) float64 {
	heightCm := heightM * 100
	if sex == Female {
		return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*ageYears
	}
	return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*ageYears
}

// TDEE returns total daily energy expenditure.
func TDEE(bmr, activityFactor, trainingKcal float64) float64 {
	return bmr*activityFactor + trainingKcal
}

// FatBand returns the healthy body-fat percentage range for sex.
func FatBand(sex Sex) (lo, hi float64) {
	if sex == Female {
		return 16, 31
	}
	return 6, 24
}

// BMICategory classifies a BMI value.
type BMICategory uint8

const (
	Underweight BMICategory = iota
	Normal
	Overweight
	Obese
)

// ClassifyBMI returns the WHO category for bmi.
func ClassifyBMI(bmi float64) BMICategory {
	switch {
	case bmi < 18.5:
		return Underweight
	case bmi < 25:
		return Normal
	case bmi < 30:
		return Overweight
	default:
		return Obese
	}
}

func (c BMICategory) String() string {
	switch c {
	case Underweight:
		return "underweight"
	case Normal:
		return "normal"
	case Overweight:
		return "overweight"
	case Obese:
		return "obese"
	default:
		return "unknown"
	}
}

// State is the mutable body composition owned by a simulation run. The
// three history series grow by one entry per simulated week.
type State struct {
	WeightKg       float64 `json:"weight_kg"`
	HeightM        float64 `json:"height_m"`
	AgeYears       float64 `json:"age"`
	Sex            Sex     `json:"sex"`
	ActivityFactor float64 `json:"activity_factor"`
	TrainingKcal   float64 `json:"training_kcal"`
	FatPercent     float64 `json:"fat_percent"`

	// Fat percentage before the first recorded week
	StartFatPercent float64 `json:"start_fat_percent,omitempty"`

	BMIHistory     []float64 `json:"bmi_history"`
	CalorieHistory []float64 `json:"calorie_history"`
	FatHistory     []float64 `json:"fat_history"`
}

// BMI returns the current body mass index.
func (s *State) BMI() float64 {
	return BMI(s.WeightKg, s.HeightM)
}

// BMR returns the current basal metabolic rate.
func (s *State) BMR() float64 {
	return BMR(s.WeightKg, s.HeightM, s.AgeYears, s.Sex)
}

// TDEE returns the current total daily energy expenditure.
func (s *State) TDEE() float64 {
	return TDEE(s.BMR(), s.ActivityFactor, s.TrainingKcal)
}

// FatMassKg returns the fat mass implied by weight and fat percentage.
func (s *State) FatMassKg() float64 {
	return s.WeightKg * s.FatPercent / 100
}

// LeanMassKg returns weight minus fat mass.
func (s *State) LeanMassKg() float64 {
	return s.WeightKg - s.FatMassKg()
}

// Weeks returns how many weeks have been recorded.
func (s *State) Weeks() int {
	return len(s.FatHistory)
}

// LastFat returns the most recently recorded fat percentage.
func (s *State) LastFat() (float64, bool) {
	if len(s.FatHistory) == 0 {
		return 0, false
	}
	return s.FatHistory[len(s.FatHistory)-1], true
}

// FatChange returns the fat percentage change of the most recent week. ok is
// false until one week has been recorded.
func (s *State) FatChange() (delta float64, ok bool) {
	switch n := len(s.FatHistory); {
	case n >= 2:
		return s.FatHistory[n-1] - s.FatHistory[n-2], true
	case n == 1 && s.StartFatPercent > 0:
		return s.FatHistory[0] - s.StartFatPercent, true
	}
	return 0, false
}

// Record appends one week to the history series.
func (s *State) Record(bmi, calories, fatPercent float64) {
	s.BMIHistory = append(s.BMIHistory, bmi)
	s.CalorieHistory = append(s.CalorieHistory, calories)
	s.FatHistory = append(s.FatHistory, fatPercent)
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	cp := *s
	cp.BMIHistory = append([]float64(nil), s.BMIHistory...)
	cp.CalorieHistory = append([]float64(nil), s.CalorieHistory...)
	cp.FatHistory = append([]float64(nil), s.FatHistory...)
	return &cp
}

// LogValue implements slog.LogValuer for structured logging.
func (s *State) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("weight_kg", s.WeightKg),
		slog.Float64("fat_pct", s.FatPercent),
		slog.Float64("bmi", s.BMI()),
		slog.Int("weeks", s.Weeks()),
	)
}
