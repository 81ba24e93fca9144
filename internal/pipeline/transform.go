package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
)

// ZoneTransformer implements Transformer: it parses a zone message, builds the
// weekly schedule and applies the publication filter and integrity check.
type ZoneTransformer struct {
	formatter *domain.Formatter
	policy    domain.FilterPolicy
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewTransformer creates a ZoneTransformer. A nil formatter formats without
// description rewriting.
func NewTransformer(formatter *domain.Formatter, policy domain.FilterPolicy, metrics *observability.Metrics, logger *slog.Logger) *ZoneTransformer {
	if formatter == nil {
		formatter = domain.NewFormatter(nil, nil, logger)
	}
	return &ZoneTransformer{
		formatter: formatter,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
	}
}

func (t *ZoneTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.ZoneSchedule, error) {
	zone, err := domain.ParseZoneTariffs(raw)
	if err != nil {
		return domain.ZoneSchedule{}, err
	}
	return t.Evaluate(ctx, zone)
}

// Evaluate consolidates one zone. The schedule is always returned; the error
// reports why it must not be published.
func (t *ZoneTransformer) Evaluate(ctx context.Context, zone domain.ZoneTariffs) (domain.ZoneSchedule, error) {
	s := domain.BuildZoneSchedule(ctx, zone, t.formatter)
	if s.DroppedRules > 0 {
		t.metrics.RulesDropped.Add(float64(s.DroppedRules))
		t.logger.Debug("dropped unusable rules", "doc_id", s.DocID, "count", s.DroppedRules)
	}

	if err := t.policy.Check(s); err != nil {
		return s, err
	}
	if vs := domain.CheckIntegrity(s); len(vs) > 0 {
		return s, &domain.IntegrityError{Violations: vs}
	}
	return s, nil
}
