package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/adapter/rdw"
	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/couchcryptid/parking-tariff-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	fromDir string
	date    string
	output  string
	all     bool
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build zone schedules from an RDW snapshot",
		Long: `Join a saved RDW snapshot into zones, consolidate every zone and
write the publishable schedules as a JSON array.

Examples:
  tariffctl build --from-dir snapshot
  tariffctl build --from-dir snapshot --date 2026-03-02 --output zones.json
  tariffctl build --from-dir snapshot --all`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.fromDir, "from-dir", "", "Snapshot directory written by the collector")
	cmd.Flags().StringVar(&opts.date, "date", "", "Reference date YYYY-MM-DD for fare parts and timestamps (default: today)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Include filtered and inconsistent zones")
	_ = cmd.MarkFlagRequired("from-dir")
	return cmd
}

// buildSummary counts the outcome of a build run.
type buildSummary struct {
	Zones       int
	Published   int
	Filtered    int
	Inconsistent int
}

func runBuild(cmd *cobra.Command, opts buildOptions) error {
	ctx := cmd.Context()

	if opts.date != "" {
		day, err := time.Parse(time.DateOnly, opts.date)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(day))
		defer domain.SetClock(nil)
	}

	regions, err := loadRegions(cmd)
	if err != nil {
		return err
	}
	ds, err := rdw.LoadDir(opts.fromDir)
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	transformer := pipeline.NewTransformer(nil, domain.NewFilterPolicy(regions.ExcludedUsageTypes),
		cliMetrics(), logger)

	zones := rdw.BuildZones(ds, regions, domain.Now(), "")
	schedules := make([]domain.ZoneSchedule, 0, len(zones))
	summary := buildSummary{Zones: len(zones)}
	for _, z := range zones {
		s, err := transformer.Evaluate(ctx, z)
		switch {
		case err == nil:
			summary.Published++
		case errors.Is(err, domain.ErrZoneFiltered):
			summary.Filtered++
			logger.Debug("zone filtered", "doc_id", s.DocID, "error", err)
		case errors.Is(err, domain.ErrIntegrity):
			summary.Inconsistent++
			logger.Warn("zone failed integrity check", "doc_id", s.DocID, "error", err)
		default:
			return err
		}
		if err == nil || opts.all {
			schedules = append(schedules, s)
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), opts.output, schedules); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "zones=%d published=%d filtered=%d inconsistent=%d\n",
		summary.Zones, summary.Published, summary.Filtered, summary.Inconsistent)
	return nil
}

// cliMetrics returns metrics on a private registry; commands report through
// their output instead.
func cliMetrics() *observability.Metrics {
	return observability.NewMetricsWithRegistry(prometheus.NewRegistry())
}

func loadRegions(cmd *cobra.Command) (*config.Regions, error) {
	path, _ := cmd.Flags().GetString("regions")
	return config.LoadRegions(path)
}

func commandLogger(cmd *cobra.Command) *slog.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel(level)}))
}

func logLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return l
}

// writeJSON writes v indented to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
