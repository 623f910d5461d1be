// Package training estimates weekly exercise expenditure from a split plan.
//
// Session costs use the MET formula kcal = MET × 3.5 × weight × minutes / 200.
// MET values are roughly half the compendium figures.
package training

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSessionMinutes is the assumed length of every session.
const DefaultSessionMinutes = 60

// DaysPerWeek is the length of every plan.
const DaysPerWeek = 7

// Session is one day's activity, identified by its MET value.
type Session uint8

const (
	Rest Session = iota
	UpperBody
	LowerBody
	HeavyLegs
	LightCardio
	ModerateCardio
	IntenseCardio
	Functional
	Yoga
)

var sessionMET = [...]float64{
	Rest:           1.0,
	UpperBody:      3.0,
	LowerBody:      4.0,
	HeavyLegs:      4.5,
	LightCardio:    2.5,
	ModerateCardio: 3.75,
	IntenseCardio:  5.0,
	Functional:     4.25,
	Yoga:           1.5,
}

var sessionNames = [...]string{
	Rest:           "rest",
	UpperBody:      "upper_body",
	LowerBody:      "lower_body",
	HeavyLegs:      "heavy_legs",
	LightCardio:    "light_cardio",
	ModerateCardio: "moderate_cardio",
	IntenseCardio:  "intense_cardio",
	Functional:     "functional",
	Yoga:           "yoga",
}

// MET returns the metabolic equivalent of the session.
func (s Session) MET() float64 {
	if int(s) >= len(sessionMET) {
		return sessionMET[Rest]
	}
	return sessionMET[s]
}

func (s Session) String() string {
	if int(s) >= len(sessionNames) {
		return fmt.Sprintf("session(%d)", s)
	}
	return sessionNames[s]
}

// ParseSession resolves a session name as returned by String.
func ParseSession(name string) (Session, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range sessionNames {
		if s == n {
			return Session(i), nil
		}
	}
	return 0, fmt.Errorf("training: unknown session %q", name)
}

// Kcal returns the energy spent in one session of the given length.
func (s Session) Kcal(weightKg float64, minutes int) float64 {
	return s.MET() * 3.5 * weightKg * float64(minutes) / 200
}

var (
	ErrPlanLength   = errors.New("training: plan must have exactly 7 days")
	ErrNoRestDay    = errors.New("training: plan must include at least one rest day")
	ErrUnknownSplit = errors.New("training: unknown split")
)

// Plan is a weekly schedule, Monday first.
type Plan struct {
	Name    string
	Days    [DaysPerWeek]Session
	Minutes int
}

// Standard splits.
var splits = map[string][DaysPerWeek]Session{
	"ABC":  {UpperBody, LowerBody, Rest, Functional, Rest, Rest, Rest},
	"ABCD": {UpperBody, LowerBody, Functional, ModerateCardio, Rest, Rest, Rest},
	"PPL":  {UpperBody, UpperBody, HeavyLegs, Rest, Rest, LightCardio, Rest},
}

// Split returns one of the standard plans: ABC, ABCD or PPL.
func Split(name string) (Plan, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	days, ok := splits[key]
	if !ok {
		return Plan{}, fmt.Errorf("%w %q (want ABC, ABCD or PPL)", ErrUnknownSplit, name)
	}
	return Plan{Name: key, Days: days, Minutes: DefaultSessionMinutes}, nil
}

// Custom builds a plan from a list of sessions.
func Custom(name string, days []Session) (Plan, error) {
	if len(days) != DaysPerWeek {
		return Plan{}, fmt.Errorf("%w, got %d", ErrPlanLength, len(days))
	}
	p := Plan{Name: name, Minutes: DefaultSessionMinutes}
	copy(p.Days[:], days)
	if p.RestDays() == 0 {
		return Plan{}, ErrNoRestDay
	}
	return p, nil
}

// RestDays counts rest days in the plan.
func (p Plan) RestDays() int {
	n := 0
	for _, d := range p.Days {
		if d == Rest {
			n++
		}
	}
	return n
}

func (p Plan) minutes() int {
	if p.Minutes <= 0 {
		return DefaultSessionMinutes
	}
	return p.Minutes
}

// DayKcal returns the expenditure of day (0 = Monday), or 0 for a day
// outside the week.
func (p Plan) DayKcal(day int, weightKg float64) float64 {
	if day < 0 || day >= DaysPerWeek {
		return 0
	}
	return p.Days[day].Kcal(weightKg, p.minutes())
}

// WeeklyKcal sums all seven days. Rest days count at 1 MET.
func (p Plan) WeeklyKcal(weightKg float64) float64 {
	var total float64
	for d := range p.Days {
		total += p.DayKcal(d, weightKg)
	}
	return total
}

// DailyAverageKcal is WeeklyKcal spread over the week; it is the value fed
// into TDEE as training expenditure.
func (p Plan) DailyAverageKcal(weightKg float64) float64 {
	return p.WeeklyKcal(weightKg) / DaysPerWeek
}
