package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/food"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

var ErrSnapshotVersion = errors.New("telemetry: unsupported snapshot version")

// Snapshot holds the complete state of a run at the end of a week, enough
// to resume it.
type Snapshot struct {
	Version int    `json:"version"`
	Seed    int64  `json:"seed"`
	Subject string `json:"subject,omitempty"`
	Week    int    `json:"week"`

	Body    *body.State    `json:"body"`
	Elite   *EliteSnapshot `json:"elite,omitempty"`
	History []DietEntry    `json:"history"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// EliteSnapshot is the serialisable form of the optimizer's elite cache.
type EliteSnapshot struct {
	Items         []food.Item `json:"items"`
	TotalCalories float64     `json:"total_calories"`
	Score         float64     `json:"score"`
	Momentum      int         `json:"momentum"`
}

// SaveSnapshot writes a snapshot to dir.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_w%03d", snapshot.Week)
	if snapshot.Subject != "" {
		name = fmt.Sprintf("snapshot_%s_w%03d", sanitize(snapshot.Subject), snapshot.Week)
	}
	if snapshot.Bookmark != nil {
		name += "_" + sanitize(string(snapshot.Bookmark.Type))
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snapshot.Version)
	}
	if snapshot.Body == nil {
		return nil, fmt.Errorf("unmarshal snapshot: missing body state")
	}

	return &snapshot, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, s)
}
