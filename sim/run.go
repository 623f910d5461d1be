package sim

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/optimizer"
	"github.com/pthm-cable/dietsim/telemetry"
)

// Run owns the state that persists across the weeks of one independent
// simulation: the random source, the elite cache, the diet history and the
// optimizer sharing them. Runs are not safe for concurrent use; give each
// goroutine its own.
type Run struct {
	cfg     *config.Config
	seed    int64
	rng     *rand.Rand
	elite   *optimizer.EliteCache
	history *telemetry.DietHistory
	opt     *optimizer.Optimizer
}

// NewRun creates a run seeded with seed.
func NewRun(cfg *config.Config, seed int64) *Run {
	r := &Run{
		cfg:     cfg,
		seed:    seed,
		rng:     rand.New(rand.NewSource(seed)),
		elite:   optimizer.NewEliteCache(),
		history: telemetry.NewDietHistory(cfg.History.Capacity),
	}
	r.opt = optimizer.New(cfg, r.rng, r.elite, r.history)
	return r
}

// Reset reseeds the random source and clears the elite cache and diet
// history, returning the run to the state NewRun produced.
func (r *Run) Reset() {
	r.rng.Seed(r.seed)
	r.elite.Reset()
	r.history.Reset()
}

// Seed returns the seed the run was created with.
func (r *Run) Seed() int64 { return r.seed }

// Config returns the run configuration.
func (r *Run) Config() *config.Config { return r.cfg }

// Rand returns the run's random source.
func (r *Run) Rand() *rand.Rand { return r.rng }

// Elite returns the elite cache.
func (r *Run) Elite() *optimizer.EliteCache { return r.elite }

// History returns the diet history.
func (r *Run) History() *telemetry.DietHistory { return r.history }

// Optimizer returns the diet optimizer bound to this run.
func (r *Run) Optimizer() *optimizer.Optimizer { return r.opt }

var errNilBody = errors.New("sim: snapshot has no body state")

// Restore loads the elite cache and diet history from snap and returns a
// copy of its body state. The random source is reseeded from the snapshot
// seed and week, so a resumed run is reproducible but does not replay the
// draws of an uninterrupted one.
func (r *Run) Restore(snap *telemetry.Snapshot) (*body.State, error) {
	if snap.Body == nil {
		return nil, errNilBody
	}
	if snap.Body.Weeks() != snap.Week {
		return nil, fmt.Errorf("sim: snapshot week %d does not match %d recorded weeks", snap.Week, snap.Body.Weeks())
	}

	r.seed = snap.Seed
	r.rng.Seed(snap.Seed + int64(snap.Week))

	r.elite.Reset()
	if e := snap.Elite; e != nil {
		r.elite.Restore(optimizer.EliteEntry{
			Items:         e.Items,
			TotalCalories: e.TotalCalories,
			Score:         e.Score,
		}, e.Momentum)
	}

	r.history.Reset()
	for _, entry := range snap.History {
		r.history.Record(entry.Items, entry.TotalCalories)
	}

	return snap.Body.Clone(), nil
}

// snapshot captures the run's cross-week state alongside state.
func (r *Run) snapshot(subject string, state *body.State, bm *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Seed:     r.seed,
		Subject:  subject,
		Week:     state.Weeks(),
		Body:     state.Clone(),
		History:  r.history.Snapshot(),
		Bookmark: bm,
	}
	if best, ok := r.elite.Best(); ok {
		snap.Elite = &telemetry.EliteSnapshot{
			Items:         best.Items,
			TotalCalories: best.TotalCalories,
			Score:         best.Score,
			Momentum:      r.elite.Momentum(),
		}
	}
	return snap
}
