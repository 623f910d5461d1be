package telemetry

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pthm-cable/dietsim/food"
)

// DefaultHistoryCapacity is the number of distinct diets kept per run.
const DefaultHistoryCapacity = 10

// DietEntry is one distinct food selection seen during a run.
type DietEntry struct {
	ID            string      `json:"id"`    // sorted food names joined with "|"
	Items         []food.Item `json:"items"` // selection in the order it was produced
	TotalCalories float64     `json:"total_calories"`
}

// DietHistory is an insertion-ordered ledger of distinct diets. Entries are
// deduplicated by their sorted name set; the oldest entry is evicted once
// capacity is exceeded.
type DietHistory struct {
	entries  []DietEntry
	ids      map[string]struct{}
	capacity int
}

// NewDietHistory creates an empty history holding at most capacity entries.
func NewDietHistory(capacity int) *DietHistory {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &DietHistory{
		entries:  make([]DietEntry, 0, capacity),
		ids:      make(map[string]struct{}, capacity),
		capacity: capacity,
	}
}

// DietID returns the stable identity of a selection: its sorted food names.
func DietID(items []food.Item) string {
	names := food.Names(items)
	sort.Strings(names)
	return strings.Join(names, "|")
}

// Record appends the selection unless an entry with the same identity is
// already present. Returns true if the selection was appended.
func (h *DietHistory) Record(items []food.Item, totalCalories float64) bool {
	id := DietID(items)
	if _, seen := h.ids[id]; seen {
		return false
	}

	entry := DietEntry{
		ID:            id,
		Items:         append([]food.Item(nil), items...),
		TotalCalories: totalCalories,
	}
	h.entries = append(h.entries, entry)
	h.ids[id] = struct{}{}

	// FIFO eviction
	if len(h.entries) > h.capacity {
		oldest := h.entries[0]
		delete(h.ids, oldest.ID)
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = DietEntry{}
		h.entries = h.entries[:len(h.entries)-1]
	}
	return true
}

// Contains reports whether a selection with the same identity is recorded.
func (h *DietHistory) Contains(items []food.Item) bool {
	_, ok := h.ids[DietID(items)]
	return ok
}

// Snapshot returns a copy of the entries, oldest first.
func (h *DietHistory) Snapshot() []DietEntry {
	out := make([]DietEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = DietEntry{
			ID:            e.ID,
			Items:         append([]food.Item(nil), e.Items...),
			TotalCalories: e.TotalCalories,
		}
	}
	return out
}

// Len returns the number of recorded entries.
func (h *DietHistory) Len() int {
	return len(h.entries)
}

// Capacity returns the maximum number of entries kept.
func (h *DietHistory) Capacity() int {
	return h.capacity
}

// Reset clears all entries.
func (h *DietHistory) Reset() {
	h.entries = h.entries[:0]
	h.ids = make(map[string]struct{}, h.capacity)
}

// dietEntryJSON is the JSON-serializable representation of a diet entry.
type dietEntryJSON struct {
	ID            string              `json:"id"`
	TotalCalories float64             `json:"total_calories"`
	Foods         []food.Item         `json:"foods"`
	ByCategory    map[string][]string `json:"by_category"`
}

// MarshalJSON serializes the history with foods grouped by category.
func (h *DietHistory) MarshalJSON() ([]byte, error) {
	export := make([]dietEntryJSON, len(h.entries))
	for i, e := range h.entries {
		groups := make(map[string][]string)
		for cat, items := range food.GroupByCategory(e.Items) {
			groups[cat.String()] = food.Names(items)
		}
		export[i] = dietEntryJSON{
			ID:            e.ID,
			TotalCalories: e.TotalCalories,
			Foods:         e.Items,
			ByCategory:    groups,
		}
	}
	return json.MarshalIndent(export, "", "  ")
}
