// Package cohort simulates many subjects side by side. Subjects are ECS
// entities; each owns an independent sim.Run seeded from the cohort seed and
// its profile index, so results do not depend on scheduling.
package cohort

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/components"
	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
	"github.com/pthm-cable/dietsim/sim"
	"github.com/pthm-cable/dietsim/telemetry"
)

// subject is the per-entity runtime state kept outside the ECS.
type subject struct {
	name        string
	state       *body.State
	sim         *sim.Simulator
	startWeight float64
	startFat    float64
}

// WeekHook receives every subject's weekly stats.
type WeekHook func(stats telemetry.WeekStats, bookmarks []telemetry.Bookmark) error

// Cohort holds all subjects of a batch simulation.
type Cohort struct {
	cfg       *config.Config
	catalogue *food.Catalogue
	seed      int64

	world  *ecs.World
	mapper *ecs.Map3[components.Identity, components.Composition, components.Progress]
	filter *ecs.Filter3[components.Identity, components.Composition, components.Progress]

	compMap *ecs.Map1[components.Composition]
	progMap *ecs.Map1[components.Progress]

	subjects []*subject // indexed by Identity.Index
	nextID   uint32
	onWeek   WeekHook
}

// New creates an empty cohort.
func New(cfg *config.Config, catalogue *food.Catalogue, seed int64) *Cohort {
	world := ecs.NewWorld()
	return &Cohort{
		cfg:       cfg,
		catalogue: catalogue,
		seed:      seed,
		world:     world,
		mapper:    ecs.NewMap3[components.Identity, components.Composition, components.Progress](world),
		filter:    ecs.NewFilter3[components.Identity, components.Composition, components.Progress](world),
		compMap:   ecs.NewMap1[components.Composition](world),
		progMap:   ecs.NewMap1[components.Progress](world),
		nextID:    1,
	}
}

// OnWeek sets a hook called with every subject's weekly stats. Calls are
// serialised and made in profile order after each cohort week.
func (c *Cohort) OnWeek(fn WeekHook) {
	c.onWeek = fn
}

// Add validates p and spawns a subject for it.
func (c *Cohort) Add(p body.Profile) (ecs.Entity, error) {
	index := len(c.subjects)
	name := p.Name
	if name == "" {
		name = fmt.Sprintf("subject-%03d", index)
	}

	state, err := p.NewState()
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("profile %s: %w", name, err)
	}

	plan, err := p.TrainingPlan()
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("profile %s: %w", name, err)
	}
	opts := sim.Options{Subject: name, Plan: plan}

	run := sim.NewRun(c.cfg, c.seed+int64(index))
	c.subjects = append(c.subjects, &subject{
		name:        name,
		state:       state,
		sim:         sim.New(run, opts),
		startWeight: state.WeightKg,
		startFat:    state.FatPercent,
	})

	id := c.nextID
	c.nextID++

	ident := components.Identity{ID: id, Index: index, Name: name}
	comp := compositionOf(state)
	prog := components.Progress{Weeks: p.Weeks}
	return c.mapper.NewEntity(&ident, &comp, &prog), nil
}

// AddAll adds every profile, stopping at the first invalid one.
func (c *Cohort) AddAll(profiles []body.Profile) error {
	for _, p := range profiles {
		if _, err := c.Add(p); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of subjects.
func (c *Cohort) Len() int {
	return len(c.subjects)
}

// pending is a subject due to be stepped this week.
type pending struct {
	entity ecs.Entity
	index  int
}

// Step advances every unfinished subject by one week and returns how many
// were stepped.
func (c *Cohort) Step(ctx context.Context) (int, error) {
	// First pass: collect due subjects (query must complete before writes)
	var due []pending
	query := c.filter.Query()
	for query.Next() {
		ident, _, prog := query.Get()
		if !prog.Done() {
			due = append(due, pending{entity: query.Entity(), index: ident.Index})
		}
	}
	if len(due) == 0 {
		return 0, nil
	}
	slices.SortFunc(due, func(a, b pending) int { return a.index - b.index })

	// Parallel phase: subjects share only the read-only catalogue
	weeks := make([]sim.Week, len(due))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.cfg.Cohort.Parallelism))
	for i, d := range due {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s := c.subjects[d.index]
			w, err := s.sim.Step(s.state, c.catalogue)
			if err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			weeks[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	// Apply phase: write results back to components
	for i, d := range due {
		w := weeks[i]
		comp := c.compMap.Get(d.entity)
		*comp = compositionOf(c.subjects[d.index].state)

		prog := c.progMap.Get(d.entity)
		prog.Week = w.Stats.Week
		prog.Intake = w.Stats.Intake
		if w.Stats.Reused {
			prog.ReusedWeeks++
		}
		if w.Stats.Stalled {
			prog.StalledWeeks++
		}
		if w.Stats.Clamped {
			prog.ClampedWeeks++
		}

		if c.onWeek != nil {
			if err := c.onWeek(w.Stats, w.Bookmarks); err != nil {
				return len(due), err
			}
		}
	}
	return len(due), nil
}

// Run steps the cohort until every subject has finished.
func (c *Cohort) Run(ctx context.Context) error {
	for week := 1; ; week++ {
		n, err := c.Step(ctx)
		if err != nil {
			return fmt.Errorf("cohort week %d: %w", week, err)
		}
		if n == 0 {
			return nil
		}
		slog.Debug("cohort week done", "week", week, "subjects", n)
	}
}

// Summaries returns one run summary per subject, in profile order.
func (c *Cohort) Summaries() []telemetry.Summary {
	out := make([]telemetry.Summary, len(c.subjects))
	for i, s := range c.subjects {
		out[i] = s.sim.Summary(s.startWeight, s.startFat)
	}
	return out
}

// Histories calls fn with each subject's diet history, in profile order.
func (c *Cohort) Histories(fn func(name string, h *telemetry.DietHistory) error) error {
	for _, row := range c.Rows() {
		h := c.subjects[row.Identity.Index].sim.Run().History()
		if err := fn(row.Identity.Name, h); err != nil {
			return err
		}
	}
	return nil
}

// Row is one subject's current component values.
type Row struct {
	Identity    components.Identity
	Composition components.Composition
	Progress    components.Progress
}

// Rows returns the current component values of every subject, in profile
// order.
func (c *Cohort) Rows() []Row {
	rows := make([]Row, len(c.subjects))
	query := c.filter.Query()
	for query.Next() {
		ident, comp, prog := query.Get()
		rows[ident.Index] = Row{Identity: *ident, Composition: *comp, Progress: *prog}
	}
	return rows
}

// State returns the body state of the subject at index.
func (c *Cohort) State(index int) *body.State {
	return c.subjects[index].state
}

func compositionOf(s *body.State) components.Composition {
	lo, hi := body.FatBand(s.Sex)
	return components.Composition{
		WeightKg:   s.WeightKg,
		FatPercent: s.FatPercent,
		BMI:        s.BMI(),
		InFatBand:  s.FatPercent >= lo && s.FatPercent <= hi,
	}
}
