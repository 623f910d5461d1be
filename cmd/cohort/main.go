// Command cohort simulates every profile in a YAML file side by side and
// prints a per-subject report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/pthm-cable/dietsim/body"
	"github.com/pthm-cable/dietsim/cohort"
	"github.com/pthm-cable/dietsim/components"
	"github.com/pthm-cable/dietsim/config"
	"github.com/pthm-cable/dietsim/food"
	"github.com/pthm-cable/dietsim/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	profilesPath := flag.String("profiles", "", "Profiles YAML (required)")
	cataloguePath := flag.String("catalogue", "", "Food catalogue CSV (empty = built-in)")
	seed := flag.Int64("seed", 1, "Cohort seed; subject i runs with seed+i")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and summaries")
	parallelism := flag.Int("parallelism", 0, "Subjects stepped concurrently (0 = use config)")
	logWeeks := flag.Bool("log-weeks", false, "Log every subject week via slog")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *profilesPath == "" {
		slog.Error("-profiles is required")
		os.Exit(2)
	}
	if err := run(*configPath, *profilesPath, *cataloguePath, *outputDir, *seed, *parallelism, *logWeeks); err != nil {
		slog.Error("cohort failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, profilesPath, cataloguePath, outputDir string, seed int64, parallelism int, logWeeks bool) error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg().Clone()
	if parallelism > 0 {
		cfg.Cohort.Parallelism = parallelism
	}

	catalogue := food.DefaultCatalogue()
	if cataloguePath != "" {
		f, err := os.Open(cataloguePath)
		if err != nil {
			return err
		}
		catalogue, err = food.LoadCSV(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("loading catalogue: %w", err)
		}
	}

	f, err := os.Open(profilesPath)
	if err != nil {
		return err
	}
	profiles, err := body.LoadProfiles(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}

	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	c := cohort.New(cfg, catalogue, seed)
	if err := c.AddAll(profiles); err != nil {
		return err
	}
	c.OnWeek(func(st telemetry.WeekStats, bookmarks []telemetry.Bookmark) error {
		if logWeeks {
			slog.Info("week", "subject", st.Subject, "week", st.Week, "weight", st.WeightKg, "fat", st.FatPercent)
		}
		if err := om.WriteWeek(st); err != nil {
			return err
		}
		for _, bm := range bookmarks {
			if err := om.WriteBookmark(bm); err != nil {
				return err
			}
		}
		return nil
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting cohort",
		"subjects", c.Len(),
		"seed", seed,
		"parallelism", cfg.Cohort.Parallelism,
		"foods", catalogue.Len(),
	)
	if err := c.Run(ctx); err != nil {
		return err
	}

	if err := c.Histories(om.WriteDiets); err != nil {
		return fmt.Errorf("writing diets: %w", err)
	}
	if err := om.WriteSummary(c.Summaries()...); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	printReport(os.Stdout, c.Rows())
	slog.Info("cohort complete", "subjects", c.Len(), "output_dir", om.Dir())
	return nil
}

func printReport(w io.Writer, rows []cohort.Row) {
	fields := components.SubjectFieldDescriptors()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	labels := make([]string, len(fields))
	for i, fd := range fields {
		labels[i] = fd.Label
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t")+"\t")

	for _, row := range rows {
		values := make([]string, len(fields))
		for i, fd := range fields {
			values[i] = components.FieldValue(fd.ID, &row.Identity, &row.Composition, &row.Progress)
		}
		fmt.Fprintln(tw, strings.Join(values, "\t")+"\t")
	}
	tw.Flush()
}
