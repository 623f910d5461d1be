// Package components defines ECS components for cohort subjects.
package components

// Identity names a subject within a cohort.
type Identity struct {
	ID    uint32
	Index int // position in the input profile list; seeds the subject's run
	Name  string
}

// Composition mirrors the subject's body state after the latest week.
type Composition struct {
	WeightKg   float64
	FatPercent float64
	BMI        float64
	InFatBand  bool
}

// Progress tracks how far a subject is through its simulation.
type Progress struct {
	Week   int
	Weeks  int // total weeks requested
	Intake float64

	// Counters over the whole run
	ReusedWeeks  int
	StalledWeeks int
	ClampedWeeks int
}

// Done reports whether every requested week has been simulated.
func (p *Progress) Done() bool {
	return p.Week >= p.Weeks
}
