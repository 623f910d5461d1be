package telemetry

import (
	"testing"

	"github.com/pthm-cable/dietsim/config"
)

func init() {
	config.MustInit("")
}

func newDetector() *BookmarkDetector {
	cfg := config.Cfg().Telemetry
	cfg.StallWeeks = 3
	cfg.DietStreakWeeks = 4
	return NewBookmarkDetector(cfg)
}

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_EnteredFatBand(t *testing.T) {
	bd := newDetector()

	for w := 1; w <= 3; w++ {
		bd.Check(WeekStats{Week: w, FatPercent: 26 - float64(w)*0.5, BMICategory: "overweight", DietID: "a"})
	}
	bms := bd.Check(WeekStats{Week: 4, FatPercent: 23.8, InFatBand: true, BMICategory: "overweight", DietID: "a"})

	if !hasBookmark(bms, BookmarkEnteredFatBand) {
		t.Errorf("expected %s bookmark, got %+v", BookmarkEnteredFatBand, bms)
	}
	if bms[0].Week != 4 {
		t.Errorf("bookmark week = %d, want 4", bms[0].Week)
	}

	bms = bd.Check(WeekStats{Week: 5, FatPercent: 24.2, BMICategory: "overweight", DietID: "a"})
	if !hasBookmark(bms, BookmarkLeftFatBand) {
		t.Errorf("expected %s bookmark, got %+v", BookmarkLeftFatBand, bms)
	}
}

func TestBookmarkDetector_BMICategory(t *testing.T) {
	bd := newDetector()

	bd.Check(WeekStats{Week: 1, BMI: 25.2, BMICategory: "overweight", DietID: "a"})
	bms := bd.Check(WeekStats{Week: 2, BMI: 24.9, BMICategory: "normal", DietID: "a"})
	if !hasBookmark(bms, BookmarkBMICategory) {
		t.Errorf("expected BMI category bookmark, got %+v", bms)
	}

	bms = bd.Check(WeekStats{Week: 3, BMI: 24.8, BMICategory: "normal", DietID: "a"})
	if hasBookmark(bms, BookmarkBMICategory) {
		t.Error("unchanged category should not trigger")
	}
}

func TestBookmarkDetector_FatStallTriggersOnce(t *testing.T) {
	bd := newDetector()

	count := 0
	for w := 1; w <= 8; w++ {
		bms := bd.Check(WeekStats{Week: w, FatPercent: 20, Stalled: w > 1, BMICategory: "normal", DietID: "a"})
		if hasBookmark(bms, BookmarkFatStall) {
			count++
			if w != 4 {
				t.Errorf("stall bookmark at week %d, want 4", w)
			}
		}
	}
	if count != 1 {
		t.Errorf("stall bookmarks = %d, want 1", count)
	}

	// A break in the stall re-arms the detector
	bd.Check(WeekStats{Week: 9, FatPercent: 19, BMICategory: "normal", DietID: "a"})
	var rearmed bool
	for w := 10; w <= 12; w++ {
		bms := bd.Check(WeekStats{Week: w, FatPercent: 19, Stalled: true, BMICategory: "normal", DietID: "a"})
		rearmed = rearmed || hasBookmark(bms, BookmarkFatStall)
	}
	if !rearmed {
		t.Error("expected stall bookmark after re-arming")
	}
}

func TestBookmarkDetector_DietSwitch(t *testing.T) {
	bd := newDetector()

	// Short streaks do not count
	bd.Check(WeekStats{Week: 1, DietID: "a", BMICategory: "normal"})
	bms := bd.Check(WeekStats{Week: 2, DietID: "b", BMICategory: "normal"})
	if hasBookmark(bms, BookmarkDietSwitch) {
		t.Error("switch after 1 week should not trigger")
	}

	for w := 3; w <= 6; w++ {
		bd.Check(WeekStats{Week: w, DietID: "b", BMICategory: "normal"})
	}
	bms = bd.Check(WeekStats{Week: 7, DietID: "c", Items: 6, Intake: 2100, BMICategory: "normal"})
	if !hasBookmark(bms, BookmarkDietSwitch) {
		t.Errorf("expected diet switch after 5 weeks on b, got %+v", bms)
	}
}

func TestBookmarkDetector_BoundHit(t *testing.T) {
	bd := newDetector()

	first := bd.Check(WeekStats{Week: 1, Clamped: true, BMICategory: "obese"})
	second := bd.Check(WeekStats{Week: 2, Clamped: true, BMICategory: "obese"})
	if !hasBookmark(first, BookmarkBoundHit) {
		t.Error("expected bound hit on first clamped week")
	}
	if hasBookmark(second, BookmarkBoundHit) {
		t.Error("consecutive clamped weeks should trigger once")
	}
}

func TestBookmarkDetector_SubjectAndReset(t *testing.T) {
	bd := newDetector()
	bd.Check(WeekStats{Subject: "s1", Week: 1, BMICategory: "normal"})
	bms := bd.Check(WeekStats{Subject: "s1", Week: 2, BMICategory: "overweight"})
	if len(bms) == 0 || bms[0].Subject != "s1" {
		t.Fatalf("bookmarks = %+v, want subject s1", bms)
	}

	bd.Reset()
	if bms := bd.Check(WeekStats{Week: 1, BMICategory: "obese"}); len(bms) != 0 {
		t.Errorf("first week after reset should have no previous week, got %+v", bms)
	}
}
