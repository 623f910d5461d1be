package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one simulated week.
const (
	PhaseTarget    = "target"
	PhaseOptimize  = "optimize"
	PhaseUpdate    = "update"
	PhaseTelemetry = "telemetry"
)

var phases = []string{PhaseTarget, PhaseOptimize, PhaseUpdate, PhaseTelemetry}

// PerfSample holds timing data for a single week.
type PerfSample struct {
	WeekDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window of weeks.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	weekStart     time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of weeks to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 16
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartWeek begins timing a new simulated week.
func (p *PerfCollector) StartWeek() {
	p.weekStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	// End previous phase if any
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndWeek finishes timing the current week and records the sample.
func (p *PerfCollector) EndWeek() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		WeekDuration: now.Sub(p.weekStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgWeekDuration time.Duration
	MinWeekDuration time.Duration
	MaxWeekDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total week time
	PhasePct map[string]float64

	WeeksPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minWeek, maxWeek time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.WeekDuration

		if i == 0 || s.WeekDuration < minWeek {
			minWeek = s.WeekDuration
		}
		if s.WeekDuration > maxWeek {
			maxWeek = s.WeekDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var perSec float64
	if avg > 0 {
		perSec = float64(time.Second) / float64(avg)
	}

	return PerfStats{
		AvgWeekDuration: avg,
		MinWeekDuration: minWeek,
		MaxWeekDuration: maxWeek,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		WeeksPerSecond:  perSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_week_us", s.AvgWeekDuration.Microseconds(),
		"min_week_us", s.MinWeekDuration.Microseconds(),
		"max_week_us", s.MaxWeekDuration.Microseconds(),
		"weeks_per_sec", int(s.WeeksPerSecond),
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_week_us", s.AvgWeekDuration.Microseconds()),
		slog.Int64("min_week_us", s.MinWeekDuration.Microseconds()),
		slog.Int64("max_week_us", s.MaxWeekDuration.Microseconds()),
		slog.Float64("weeks_per_sec", s.WeeksPerSecond),
	}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Week         int     `csv:"week"`
	AvgWeekUS    int64   `csv:"avg_week_us"`
	MinWeekUS    int64   `csv:"min_week_us"`
	MaxWeekUS    int64   `csv:"max_week_us"`
	WeeksPerSec  float64 `csv:"weeks_per_sec"`
	TargetPct    float64 `csv:"target_pct"`
	OptimizePct  float64 `csv:"optimize_pct"`
	UpdatePct    float64 `csv:"update_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(week int) PerfStatsCSV {
	return PerfStatsCSV{
		Week:         week,
		AvgWeekUS:    s.AvgWeekDuration.Microseconds(),
		MinWeekUS:    s.MinWeekDuration.Microseconds(),
		MaxWeekUS:    s.MaxWeekDuration.Microseconds(),
		WeeksPerSec:  s.WeeksPerSecond,
		TargetPct:    s.PhasePct[PhaseTarget],
		OptimizePct:  s.PhasePct[PhaseOptimize],
		UpdatePct:    s.PhasePct[PhaseUpdate],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
