package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
)

// DietRow is the CSV form of one diet history entry.
type DietRow struct {
	Subject       string  `csv:"subject"`
	Order         int     `csv:"order"` // 0 = oldest retained
	Items         int     `csv:"items"`
	TotalCalories float64 `csv:"total_calories"`
	Foods         string  `csv:"foods"`
}

// DietRows flattens a history snapshot for CSV output.
func DietRows(subject string, entries []DietEntry) []DietRow {
	rows := make([]DietRow, len(entries))
	for i, e := range entries {
		rows[i] = DietRow{
			Subject:       subject,
			Order:         i,
			Items:         len(e.Items),
			TotalCalories: e.TotalCalories,
			Foods:         strings.Join(food.Names(e.Items), "; "),
		}
	}
	return rows
}

// csvFile is an output CSV that writes its header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func (c *csvFile) write(records any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager handles structured run output. All methods are safe to call
// on a nil manager, which disables output. It is not safe for concurrent use.
type OutputManager struct {
	dir   string
	runID string

	weeks     *csvFile
	diets     *csvFile
	bookmarks *csvFile
	perf      *csvFile
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir, runID: uuid.NewString()}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{"weeks.csv", &om.weeks},
		{"diets.csv", &om.diets},
		{"bookmarks.csv", &om.bookmarks},
		{"perf.csv", &om.perf},
	}
	for _, spec := range files {
		f, err := os.Create(filepath.Join(dir, spec.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", spec.name, err)
		}
		*spec.dst = &csvFile{f: f}
	}

	return om, nil
}

// RunID returns the identifier stamped on this run's summary.
func (om *OutputManager) RunID() string {
	if om == nil {
		return ""
	}
	return om.runID
}

// WriteConfig saves the configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWeek writes a week record to weeks.csv.
func (om *OutputManager) WriteWeek(stats WeekStats) error {
	if om == nil {
		return nil
	}
	if err := om.weeks.write([]WeekStats{stats}); err != nil {
		return fmt.Errorf("writing week: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WritePerf writes a performance record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, week int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(week)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteDiets appends the retained diets of one subject to diets.csv.
func (om *OutputManager) WriteDiets(subject string, h *DietHistory) error {
	if om == nil || h == nil || h.Len() == 0 {
		return nil
	}
	if err := om.diets.write(DietRows(subject, h.Snapshot())); err != nil {
		return fmt.Errorf("writing diets: %w", err)
	}
	return nil
}

// WriteDietHistory saves the diet history as JSON, grouped by category.
func (om *OutputManager) WriteDietHistory(name string, h *DietHistory) error {
	if om == nil || h == nil {
		return nil
	}
	data, err := h.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling diet history: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, name), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// WriteSummary stamps the run id on the summaries and saves them as
// summary.json.
func (om *OutputManager) WriteSummary(summaries ...Summary) error {
	if om == nil {
		return nil
	}
	for i := range summaries {
		summaries[i].RunID = om.runID
	}

	var v any = summaries
	if len(summaries) == 1 {
		v = summaries[0]
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "summary.json"), data, 0644); err != nil {
		return fmt.Errorf("writing summary.json: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, c := range []*csvFile{om.weeks, om.diets, om.bookmarks, om.perf} {
		if c == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
