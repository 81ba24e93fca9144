// Command collector fetches parking tariffs from RDW open data for the
// configured area managers, joins them into one message per zone and publishes
// the zones to the source topic of the ETL service.
//
// Usage:
//
//	go run ./cmd/collector                      # fetch from RDW and publish
//	go run ./cmd/collector -from-dir snapshot   # publish a saved snapshot
//	go run ./cmd/collector -save-dir snapshot   # also save what was fetched
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/parking-tariff-etl/internal/adapter/kafka"
	"github.com/couchcryptid/parking-tariff-etl/internal/adapter/rdw"
	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/google/uuid"
)

func main() {
	fromDir := flag.String("from-dir", "", "read datasets from a snapshot directory instead of the RDW API")
	saveDir := flag.String("save-dir", "", "write fetched datasets to this snapshot directory")
	dryRun := flag.Bool("dry-run", false, "build zones without publishing")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		logger.Error("failed to load regions", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, regions, metrics, logger, *fromDir, *saveDir, *dryRun); err != nil {
		logger.Error("collector failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, regions *config.Regions, metrics *observability.Metrics, logger *slog.Logger, fromDir, saveDir string, dryRun bool) error {
	runID := uuid.NewString()
	today := domain.Now()
	logger = logger.With("run_id", runID)

	var ds *rdw.Dataset
	var err error
	if fromDir != "" {
		logger.Info("loading snapshot", "dir", fromDir)
		ds, err = rdw.LoadDir(fromDir)
	} else {
		managers := regions.ManagerIDs()
		logger.Info("fetching rdw datasets", "managers", managers, "date_filter", cfg.RDWUseDateFilter)
		client := rdw.NewClient(cfg.RDWBaseURL, cfg.RDWTimeout, metrics, logger)
		ds, err = client.Fetch(ctx, managers, rdw.FetchOptions{UseDateFilter: cfg.RDWUseDateFilter, Today: today})
	}
	if err != nil {
		return err
	}

	if saveDir != "" {
		if err := rdw.SaveDir(saveDir, ds); err != nil {
			return err
		}
		logger.Info("snapshot saved", "dir", saveDir)
	}

	zones := rdw.BuildZones(ds, regions, today, runID)
	logger.Info("zones built",
		"zones", len(zones),
		"areas", len(ds.Areas),
		"time_frames", len(ds.TimeFrames),
		"fare_parts", len(ds.FareParts),
	)
	if dryRun {
		return nil
	}

	publisher := kafkaadapter.NewPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}()
	if err := publisher.Publish(ctx, zones, cfg.BatchSize); err != nil {
		return err
	}
	logger.Info("zones published", "topic", cfg.KafkaSourceTopic, "zones", len(zones))
	return nil
}
