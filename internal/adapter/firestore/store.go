package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Store persists zone schedules as Firestore documents keyed by DocID.
// It implements pipeline.BatchLoader.
type Store struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
}

// NewStore connects to Firestore with a service-account credentials file.
func NewStore(ctx context.Context, credentialsFile, collection string, logger *slog.Logger) (*Store, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	return &Store{client: client, collection: collection, logger: logger}, nil
}

// LoadBatch writes all schedules with a BulkWriter, replacing existing
// documents. The first failed write is returned after all jobs finish.
func (s *Store) LoadBatch(ctx context.Context, schedules []domain.ZoneSchedule) error {
	if len(schedules) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(schedules))
	for i := range schedules {
		ref := s.client.Collection(s.collection).Doc(schedules[i].DocID)
		job, err := bw.Set(ref, toDocument(schedules[i]))
		if err != nil {
			bw.End()
			return fmt.Errorf("queue zone %s: %w", schedules[i].DocID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var errs []error
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, fmt.Errorf("write zone %s: %w", schedules[i].DocID, err))
		}
	}
	if len(errs) > 0 {
		s.logger.Error("firestore batch partially failed", "failed", len(errs), "batch_size", len(schedules))
		return errors.Join(errs...)
	}
	return nil
}

// ScanIntegrity reads every stored zone and checks price against rates.
func (s *Store) ScanIntegrity(ctx context.Context) ([]domain.Violation, int, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	return scanDocuments(func() (string, map[string]any, error) {
		snap, err := iter.Next()
		if err != nil {
			return "", nil, err
		}
		return snap.Ref.ID, snap.Data(), nil
	})
}

// Close releases the Firestore connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// scanDocuments drains next until iterator.Done, returning the violations
// and the number of documents checked.
func scanDocuments(next func() (string, map[string]any, error)) ([]domain.Violation, int, error) {
	var violations []domain.Violation
	count := 0
	for {
		id, data, err := next()
		if errors.Is(err, iterator.Done) {
			return violations, count, nil
		}
		if err != nil {
			return violations, count, fmt.Errorf("read zones: %w", err)
		}
		count++
		violations = append(violations, domain.CheckIntegrityDocument(id, data)...)
	}
}

// toDocument maps a schedule onto the document layout read by the app.
func toDocument(s domain.ZoneSchedule) map[string]any {
	rates := make([]map[string]any, len(s.Rates))
	for i, r := range s.Rates {
		rates[i] = map[string]any{
			"time":         r.Time,
			"price":        r.Price,
			"detail":       r.Detail,
			"rate_numeric": r.RateNumeric,
		}
	}
	doc := map[string]any{
		"id":                s.ID,
		"name":              s.Name,
		"city":              s.City,
		"mgr_id":            s.ManagerID,
		"lat":               s.Lat,
		"lng":               s.Lng,
		"price":             s.Price,
		"rates":             rates,
		"max_duration_mins": s.MaxDurationMins,
		"has_special_rules": s.HasSpecialRules,
		"updated_at":        s.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if s.UsageID != "" {
		doc["usage_id"] = s.UsageID
	}
	if s.RunID != "" {
		doc["run_id"] = s.RunID
	}
	return doc
}
