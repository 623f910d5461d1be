package training

import (
	"errors"
	"math"
	"testing"
)

func TestSessionKcal(t *testing.T) {
	// 3.0 MET, 80 kg, 60 min: 3 * 3.5 * 80 * 60 / 200
	if got := UpperBody.Kcal(80, 60); math.Abs(got-252) > 1e-9 {
		t.Errorf("UpperBody.Kcal = %v, want 252", got)
	}
	if got := Rest.Kcal(80, 60); math.Abs(got-84) > 1e-9 {
		t.Errorf("Rest.Kcal = %v, want 84", got)
	}
}

func TestSplitWeeklyKcal(t *testing.T) {
	tests := []struct {
		name     string
		metSum   float64
		restDays int
	}{
		{"ABC", 3.0 + 4.0 + 4.25 + 4*1.0, 4},
		{"abcd", 3.0 + 4.0 + 4.25 + 3.75 + 3*1.0, 3},
		{"PPL", 3.0 + 3.0 + 4.5 + 2.5 + 3*1.0, 3},
	}

	const weight = 70.0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Split(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			want := tt.metSum * 3.5 * weight * DefaultSessionMinutes / 200
			if got := p.WeeklyKcal(weight); math.Abs(got-want) > 1e-9 {
				t.Errorf("WeeklyKcal = %v, want %v", got, want)
			}
			if got := p.DailyAverageKcal(weight); math.Abs(got-want/7) > 1e-9 {
				t.Errorf("DailyAverageKcal = %v, want %v", got, want/7)
			}
			if p.RestDays() != tt.restDays {
				t.Errorf("RestDays = %d, want %d", p.RestDays(), tt.restDays)
			}
		})
	}
}

func TestSplitUnknown(t *testing.T) {
	if _, err := Split("5x5"); !errors.Is(err, ErrUnknownSplit) {
		t.Errorf("err = %v, want ErrUnknownSplit", err)
	}
}

func TestCustom(t *testing.T) {
	tests := []struct {
		name    string
		days    []Session
		wantErr error
	}{
		{"valid", []Session{Yoga, IntenseCardio, Rest, Functional, LowerBody, UpperBody, Rest}, nil},
		{"short", []Session{Yoga, Rest}, ErrPlanLength},
		{"long", []Session{Rest, Rest, Rest, Rest, Rest, Rest, Rest, Rest}, ErrPlanLength},
		{"no rest", []Session{Yoga, Yoga, Yoga, Yoga, Yoga, Yoga, Yoga}, ErrNoRestDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Custom(tt.name, tt.days)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSession(t *testing.T) {
	for s := Rest; s <= Yoga; s++ {
		got, err := ParseSession(s.String())
		if err != nil || got != s {
			t.Errorf("ParseSession(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseSession("pilates"); err == nil {
		t.Error("expected error for unknown session")
	}
}

func TestPlanMinutesDefault(t *testing.T) {
	p := Plan{Days: [DaysPerWeek]Session{UpperBody}}
	if got, want := p.DayKcal(0, 80), UpperBody.Kcal(80, DefaultSessionMinutes); got != want {
		t.Errorf("DayKcal with zero minutes = %v, want default %v", got, want)
	}
}

func TestDayKcalOutsideWeek(t *testing.T) {
	p, err := Split("ABC")
	if err != nil {
		t.Fatal(err)
	}
	for _, day := range []int{-1, -8, 7, 100} {
		if got := p.DayKcal(day, 75); got != 0 {
			t.Errorf("DayKcal(%d) = %v, want 0", day, got)
		}
	}
	if got := p.DayKcal(6, 75); got != Rest.Kcal(75, DefaultSessionMinutes) {
		t.Errorf("DayKcal(6) = %v, want rest day cost", got)
	}
}
