package telemetry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/food"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Version: SnapshotVersion,
		Seed:    42,
		Subject: "alice",
		Week:    12,
		Body: &body.State{
			WeightKg:       68.4,
			HeightM:        1.65,
			AgeYears:       28,
			Sex:            body.Female,
			ActivityFactor: 1.375,
			TrainingKcal:   220,
			FatPercent:     26.1,
			BMIHistory:     []float64{25.3, 25.1},
			CalorieHistory: []float64{1810, 1795},
			FatHistory:     []float64{26.5, 26.1},
		},
		Elite: &EliteSnapshot{
			Items:         []food.Item{{Name: "Egg", Calories: 155}, {Name: "Oats", Calories: 389}},
			TotalCalories: 544,
			Score:         31.5,
			Momentum:      2,
		},
		History: []DietEntry{
			{ID: "Egg|Oats", Items: []food.Item{{Name: "Egg", Calories: 155}, {Name: "Oats", Calories: 389}}, TotalCalories: 544},
		},
		Bookmark: &Bookmark{
			Subject:     "alice",
			Type:        BookmarkEnteredFatBand,
			Week:        12,
			Description: "Test bookmark",
		},
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	snapshot := testSnapshot()

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("snapshot file not created at %s", path)
	}
	if base := filepath.Base(path); base != "snapshot_alice_w012_entered_fat_band.json" {
		t.Errorf("filename = %s", base)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if diff := cmp.Diff(snapshot, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSnapshotSexEncodedAsLetter(t *testing.T) {
	data, err := json.Marshal(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"sex":"F"`) {
		t.Errorf("expected sex encoded as F in %s", data)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	tmpDir := t.TempDir()
	snapshot := testSnapshot()
	snapshot.Version = SnapshotVersion + 1

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); !errors.Is(err, ErrSnapshotVersion) {
		t.Errorf("err = %v, want ErrSnapshotVersion", err)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
