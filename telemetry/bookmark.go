package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/dietsim/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkEnteredFatBand BookmarkType = "entered_fat_band"
	BookmarkLeftFatBand    BookmarkType = "left_fat_band"
	BookmarkBMICategory    BookmarkType = "bmi_category_change"
	BookmarkFatStall       BookmarkType = "fat_stall"
	BookmarkDietSwitch     BookmarkType = "diet_switch"
	BookmarkBoundHit       BookmarkType = "bound_hit"
)

// Bookmark represents an automatically detected milestone.
type Bookmark struct {
	Subject     string       `csv:"subject" json:"subject,omitempty"`
	Type        BookmarkType `csv:"type" json:"type"`
	Week        int          `csv:"week" json:"week"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"subject", b.Subject,
		"type", string(b.Type),
		"week", b.Week,
		"description", b.Description,
	)
}

// BookmarkDetector detects milestones in a run from consecutive weeks.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WeekStats
	historySize int
	historyIdx  int
	historyFull bool

	stallWeeks  int // consecutive stalled weeks that trigger a bookmark
	streakWeeks int // diet streak length that makes a switch notable

	// State tracking
	stalledCount int
	dietStreak   int
	clampedLast  bool
}

// NewBookmarkDetector creates a detector using the telemetry thresholds.
func NewBookmarkDetector(cfg config.TelemetryConfig) *BookmarkDetector {
	size := cfg.BookmarkHistorySize
	if size < 2 {
		size = 2
	}
	stall := cfg.StallWeeks
	if stall < 1 {
		stall = 3
	}
	streak := cfg.DietStreakWeeks
	if streak < 1 {
		streak = 4
	}
	return &BookmarkDetector{
		history:     make([]WeekStats, size),
		historySize: size,
		stallWeeks:  stall,
		streakWeeks: streak,
	}
}

// Check analyzes the latest week and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WeekStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Subject = stats.Subject
			bookmarks = append(bookmarks, *b)
		}
	}

	if prev, ok := bd.previous(); ok {
		add(bd.checkFatBand(prev, stats))
		add(bd.checkBMICategory(prev, stats))
		add(bd.checkDietSwitch(prev, stats))
	}
	add(bd.checkFatStall(stats))
	add(bd.checkBoundHit(stats))

	bd.addToHistory(stats)
	return bookmarks
}

// Reset clears history and counters.
func (bd *BookmarkDetector) Reset() {
	clear(bd.history)
	bd.historyIdx = 0
	bd.historyFull = false
	bd.stalledCount = 0
	bd.dietStreak = 0
	bd.clampedLast = false
}

func (bd *BookmarkDetector) addToHistory(stats WeekStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) previous() (WeekStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WeekStats{}, false
	}
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx], true
}

func (bd *BookmarkDetector) getHistory() []WeekStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	// Oldest first
	out := make([]WeekStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkFatBand(prev, cur WeekStats) *Bookmark {
	switch {
	case !prev.InFatBand && cur.InFatBand:
		return &Bookmark{
			Type:        BookmarkEnteredFatBand,
			Week:        cur.Week,
			Description: fmt.Sprintf("Body fat %.1f%% entered the healthy band", cur.FatPercent),
		}
	case prev.InFatBand && !cur.InFatBand:
		return &Bookmark{
			Type:        BookmarkLeftFatBand,
			Week:        cur.Week,
			Description: fmt.Sprintf("Body fat %.1f%% left the healthy band", cur.FatPercent),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkBMICategory(prev, cur WeekStats) *Bookmark {
	if prev.BMICategory == cur.BMICategory {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkBMICategory,
		Week:        cur.Week,
		Description: fmt.Sprintf("BMI %.1f moved from %s to %s", cur.BMI, prev.BMICategory, cur.BMICategory),
	}
}

func (bd *BookmarkDetector) checkFatStall(cur WeekStats) *Bookmark {
	if !cur.Stalled {
		bd.stalledCount = 0
		return nil
	}
	bd.stalledCount++

	if bd.stalledCount == bd.stallWeeks { // trigger once per stall
		history := bd.getHistory()
		var fats []float64
		for _, h := range history {
			fats = append(fats, h.FatPercent)
		}
		fats = append(fats, cur.FatPercent)
		s := ComputeSeriesStats(fats)
		return &Bookmark{
			Type:        BookmarkFatStall,
			Week:        cur.Week,
			Description: fmt.Sprintf("Body fat stalled for %d weeks around %.1f%% (range %.2f)", bd.stalledCount, s.Mean, s.Max-s.Min),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkDietSwitch(prev, cur WeekStats) *Bookmark {
	if cur.DietID == prev.DietID {
		bd.dietStreak++
		return nil
	}

	// Streak counts the weeks the previous diet was kept
	streak := bd.dietStreak + 1
	bd.dietStreak = 0
	if streak < bd.streakWeeks {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDietSwitch,
		Week:        cur.Week,
		Description: fmt.Sprintf("Diet changed after %d weeks (%d items, %.0f kcal)", streak, cur.Items, cur.Intake),
	}
}

func (bd *BookmarkDetector) checkBoundHit(cur WeekStats) *Bookmark {
	hit := cur.Clamped && !bd.clampedLast
	bd.clampedLast = cur.Clamped
	if !hit {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkBoundHit,
		Week:        cur.Week,
		Description: fmt.Sprintf("Body composition clamped at %.1f kg, %.1f%% fat", cur.WeightKg, cur.FatPercent),
	}
}
