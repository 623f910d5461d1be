package telemetry

import (
	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/food"
)

// Collector accumulates the events of one simulated week and produces
// WeekStats when the week is flushed.
type Collector struct {
	subject string

	// Current week tracking
	tdee       float64
	adjustment float64
	target     float64
	stalled    bool

	intake   float64
	fitness  float64
	items    int
	dietID   string
	reused   bool
	repaired bool
	newDiet  bool

	weightDelta float64
	fatShare    float64
	clamped     bool
}

// NewCollector creates a collector for one subject. subject may be empty for
// single runs.
func NewCollector(subject string) *Collector {
	return &Collector{subject: subject}
}

// RecordTarget records the caloric target computation.
func (c *Collector) RecordTarget(tdee, adjustment, target float64, stalled bool) {
	c.tdee = tdee
	c.adjustment = adjustment
	c.target = target
	c.stalled = stalled
}

// RecordDiet records the selection returned by the optimizer.
func (c *Collector) RecordDiet(items []food.Item, intake, fitness float64, reused, repaired, novel bool) {
	c.dietID = DietID(items)
	c.items = len(items)
	c.intake = intake
	c.fitness = fitness
	c.reused = reused
	c.repaired = repaired
	c.newDiet = novel
}

// RecordUpdate records the body composition update.
func (c *Collector) RecordUpdate(weightDelta, fatShare float64, clamped bool) {
	c.weightDelta = weightDelta
	c.fatShare = fatShare
	c.clamped = clamped
}

// Flush produces WeekStats for the state after the update and resets the
// counters for the next week. week is 1-based.
func (c *Collector) Flush(week int, s *body.State) WeekStats {
	bmi := s.BMI()
	lo, hi := body.FatBand(s.Sex)
	stats := WeekStats{
		Subject: c.subject,
		Week:    week,

		WeightKg:    s.WeightKg,
		FatPercent:  s.FatPercent,
		BMI:         bmi,
		BMICategory: body.ClassifyBMI(bmi).String(),
		InFatBand:   s.FatPercent >= lo && s.FatPercent <= hi,

		TDEE:        c.tdee,
		Adjustment:  c.adjustment,
		Stalled:     c.stalled,
		Target:      c.target,
		Intake:      c.intake,
		DailyDelta:  c.intake - c.tdee,
		WeightDelta: c.weightDelta,
		FatShare:    c.fatShare,
		Clamped:     c.clamped,

		DietID:   c.dietID,
		Items:    c.items,
		Fitness:  c.fitness,
		Reused:   c.reused,
		NewDiet:  c.newDiet,
		Repaired: c.repaired,
	}

	c.Reset()
	return stats
}

// Subject returns the subject name stamped on every week.
func (c *Collector) Subject() string {
	return c.subject
}

// Reset clears the counters of the current week.
func (c *Collector) Reset() {
	*c = Collector{subject: c.subject}
}
