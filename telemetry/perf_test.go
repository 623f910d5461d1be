package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartWeek()
		pc.StartPhase(PhaseTarget)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseOptimize)
		time.Sleep(200 * time.Microsecond)
		pc.EndWeek()
	}

	stats := pc.Stats()

	if stats.AvgWeekDuration <= 0 {
		t.Error("expected positive average week duration")
	}
	if _, ok := stats.PhaseAvg[PhaseTarget]; !ok {
		t.Error("expected target phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseOptimize]; !ok {
		t.Error("expected optimize phase to be tracked")
	}
	if stats.MinWeekDuration > stats.MaxWeekDuration {
		t.Errorf("min %v > max %v", stats.MinWeekDuration, stats.MaxWeekDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartWeek()
		pc.StartPhase(PhaseUpdate)
		time.Sleep(10 * time.Microsecond)
		pc.EndWeek()
	}

	stats := pc.Stats()
	if stats.AvgWeekDuration <= 0 {
		t.Error("expected positive average week duration after window filled")
	}
	if stats.WeeksPerSecond <= 0 {
		t.Error("expected positive weeks per second")
	}
	if pc.sampleCount != 5 {
		t.Errorf("sampleCount = %d, want window size 5", pc.sampleCount)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartWeek()
		pc.StartPhase(PhaseTarget)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseOptimize)
		time.Sleep(500 * time.Microsecond)
		pc.EndWeek()
	}

	stats := pc.Stats()
	if stats.PhasePct[PhaseOptimize] <= stats.PhasePct[PhaseTarget] {
		t.Errorf("expected optimize (%v%%) > target (%v%%)",
			stats.PhasePct[PhaseOptimize], stats.PhasePct[PhaseTarget])
	}

	row := stats.ToCSV(5)
	if row.Week != 5 || row.OptimizePct != stats.PhasePct[PhaseOptimize] {
		t.Errorf("ToCSV = %+v", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)
	stats := pc.Stats()

	if stats.AvgWeekDuration != 0 {
		t.Error("expected zero avg week duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
}
