package body

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/dietsim/training"
)

// Input limits accepted from users.
const (
	MinWeightKg = 30.0
	MaxWeightKg = 300.0
	MinHeightM  = 1.0
	MaxHeightM  = 2.3
	MinAge      = 15.0
	MaxAge      = 120.0
	MinFat      = 3.0
	MaxFat      = 60.0
	MinWeeks    = 1
	MaxWeeks    = 208
)

var (
	ErrInvalidProfile  = errors.New("body: invalid profile")
	ErrUnknownActivity = errors.New("body: unknown activity level")
)

// activityLevels maps named lifestyles to TDEE multipliers.
var activityLevels = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// ActivityFactor returns the multiplier for a named activity level.
func ActivityFactor(level string) (float64, error) {
	f, ok := activityLevels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		return 0, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownActivity, level, strings.Join(ActivityLevels(), ", "))
	}
	return f, nil
}

// ActivityLevels returns the known level names ordered by factor.
func ActivityLevels() []string {
	names := make([]string, 0, len(activityLevels))
	for n := range activityLevels {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		return activityLevels[names[i]] < activityLevels[names[j]]
	})
	return names
}

// Profile is user-supplied input describing one subject.
type Profile struct {
	Name           string   `yaml:"name,omitempty" json:"name,omitempty"`
	WeightKg       float64  `yaml:"weight_kg" json:"weight_kg"`
	HeightM        float64  `yaml:"height_m" json:"height_m"`
	AgeYears       float64  `yaml:"age" json:"age"`
	Sex            Sex      `yaml:"sex" json:"sex"`
	FatPercent     float64  `yaml:"fat_percent" json:"fat_percent"`
	Activity       string   `yaml:"activity,omitempty" json:"activity,omitempty"` // named level, overrides ActivityFactor
	ActivityFactor float64  `yaml:"activity_factor,omitempty" json:"activity_factor,omitempty"`
	TrainingKcal   float64  `yaml:"training_kcal,omitempty" json:"training_kcal,omitempty"`
	Plan           string   `yaml:"plan,omitempty" json:"plan,omitempty"` // split name, or the name of a custom Days plan
	Days           []string `yaml:"days,omitempty" json:"days,omitempty"` // custom week of session names, Monday first
	Weeks          int      `yaml:"weeks" json:"weeks"`
}

// Factor resolves the activity multiplier: the named level if set,
// otherwise ActivityFactor.
func (p Profile) Factor() (float64, error) {
	if p.Activity != "" {
		return ActivityFactor(p.Activity)
	}
	return p.ActivityFactor, nil
}

// Validate reports every out-of-range field.
func (p Profile) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(p.WeightKg >= MinWeightKg && p.WeightKg <= MaxWeightKg,
		"weight must be between %v and %v kg, got %v", MinWeightKg, MaxWeightKg, p.WeightKg)
	check(p.HeightM >= MinHeightM && p.HeightM <= MaxHeightM,
		"height must be between %v and %v m, got %v", MinHeightM, MaxHeightM, p.HeightM)
	check(p.AgeYears >= MinAge && p.AgeYears <= MaxAge,
		"age must be between %v and %v years, got %v", MinAge, MaxAge, p.AgeYears)
	check(p.Sex == Male || p.Sex == Female, "sex must be M or F")
	check(p.FatPercent >= MinFat && p.FatPercent <= MaxFat,
		"fat percentage must be between %v and %v, got %v", MinFat, MaxFat, p.FatPercent)
	check(p.Weeks >= MinWeeks && p.Weeks <= MaxWeeks,
		"weeks must be between %d and %d, got %d", MinWeeks, MaxWeeks, p.Weeks)
	check(p.TrainingKcal >= 0, "training expenditure must be >= 0, got %v", p.TrainingKcal)

	factor, err := p.Factor()
	if err != nil {
		errs = append(errs, err)
	} else {
		check(factor > 0, "activity factor must be > 0, got %v", factor)
	}
	if _, err := p.TrainingPlan(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, errors.Join(errs...))
	}
	return nil
}

// TrainingPlan resolves the profile's weekly plan. Days builds a custom plan
// named Plan (or "custom"); otherwise Plan names a standard split. Returns nil
// when neither is set, leaving TrainingKcal fixed.
func (p Profile) TrainingPlan() (*training.Plan, error) {
	if len(p.Days) > 0 {
		sessions := make([]training.Session, len(p.Days))
		for i, d := range p.Days {
			s, err := training.ParseSession(d)
			if err != nil {
				return nil, err
			}
			sessions[i] = s
		}
		name := p.Plan
		if name == "" {
			name = "custom"
		}
		plan, err := training.Custom(name, sessions)
		if err != nil {
			return nil, err
		}
		return &plan, nil
	}
	if p.Plan == "" {
		return nil, nil
	}
	plan, err := training.Split(p.Plan)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// NewState validates p and returns the initial body state.
func (p Profile) NewState() (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	factor, _ := p.Factor()
	return &State{
		WeightKg:       p.WeightKg,
		HeightM:        p.HeightM,
		AgeYears:       p.AgeYears,
		Sex:            p.Sex,
		ActivityFactor: factor,
		TrainingKcal:   p.TrainingKcal,
		FatPercent:     p.FatPercent,

		StartFatPercent: p.FatPercent,
	}, nil
}

// LoadProfiles decodes a YAML list of profiles. A single mapping is accepted
// as a one-element list.
func LoadProfiles(r io.Reader) ([]Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}

	var list []Profile
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var single Profile
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	return []Profile{single}, nil
}
