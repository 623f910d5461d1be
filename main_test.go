package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/telemetry"
)

func TestRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	opts := options{seed: 11, weeks: 4, outputDir: dir}
	if err := run(config.Default(), opts); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "weeks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("weeks.csv has %d lines, want header + 4", len(lines))
	}

	raw, err := os.ReadFile(filepath.Join(dir, "summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	var sum telemetry.Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Weeks != 4 || sum.Seed != 11 || sum.RunID == "" {
		t.Errorf("summary = %+v", sum)
	}
}

func TestRunReturnsErrorAfterOutputOpened(t *testing.T) {
	dir := t.TempDir()

	// Week 3 with an empty body series cannot be restored
	state, err := defaultProfile.NewState()
	if err != nil {
		t.Fatal(err)
	}
	path, err := telemetry.SaveSnapshot(&telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		Seed:    5,
		Week:    3,
		Body:    state,
	}, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	opts := options{seed: 5, outputDir: dir, resume: path}
	if err := run(config.Default(), opts); err == nil {
		t.Fatal("expected restore error")
	}
	if _, err := os.Stat(filepath.Join(dir, "weeks.csv")); err != nil {
		t.Errorf("output manager not created before the error: %v", err)
	}
}

func TestRunRejectsUnknownPlan(t *testing.T) {
	opts := options{seed: 1, weeks: 2, planName: "XYZ"}
	if err := run(config.Default(), opts); err == nil {
		t.Error("expected error for unknown plan")
	}
}
